package config

import "time"

// Config is the root configuration structure for BrightBooks LedgerPort.
// It contains all configuration sections for the HTTP server, the QuickBooks
// Online query client, OAuth token management, the export audit trail,
// telemetry, and security settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// QBO contains configuration for the QuickBooks Online query API client.
	QBO QBOConfig `yaml:"qbo"`

	// OAuth contains configuration for the Intuit OAuth2 flow and the source
	// of the client credentials.
	OAuth OAuthConfig `yaml:"oauth"`

	// Tokens contains configuration for per-realm token persistence.
	Tokens TokensConfig `yaml:"tokens"`

	// Audit contains configuration for the export audit trail including
	// backend selection and retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains security-related configuration including TLS settings.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Exports of large years can take a while, so this is generous.
	// Default: 300s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout is the per-request deadline enforced by middleware.
	// It must cover a full multi-page fetch plus rendering.
	// Default: 300s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Content-Disposition must be exposed so browsers can read the suggested
	// download filename.
	// Default: ["X-Request-ID", "Content-Disposition"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials (cookies, auth headers)
	// are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// QBOConfig contains configuration for the QuickBooks Online query API client.
type QBOConfig struct {
	// APIBase is the base URL of the QuickBooks Online API.
	// Production: "https://quickbooks.api.intuit.com"
	// Sandbox:    "https://sandbox-quickbooks.api.intuit.com"
	// Default: "https://quickbooks.api.intuit.com"
	APIBase string `yaml:"api_base"`

	// MinorVersion is the QBO API minor version sent with every query.
	// Default: 75
	MinorVersion int `yaml:"minor_version"`

	// Timeout is the maximum duration for a single query request.
	// This bounds one page fetch, not the whole pagination loop.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is the MAXRESULTS value for paginated queries.
	// QBO caps this at 1000.
	// Default: 1000
	PageSize int `yaml:"page_size"`

	// MaxIdleConns controls the connection pool size of the HTTP client.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long idle connections are kept in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// OAuthConfig contains configuration for the Intuit OAuth2 authorization flow.
type OAuthConfig struct {
	// AuthURL is the Intuit consent screen URL.
	// Default: "https://appcenter.intuit.com/connect/oauth2"
	AuthURL string `yaml:"auth_url"`

	// TokenURL is the Intuit bearer token endpoint.
	// Default: "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	TokenURL string `yaml:"token_url"`

	// RedirectURL is the registered OAuth callback URL of this deployment.
	// Example: "https://ledgerport.example.com/oauth/callback"
	RedirectURL string `yaml:"redirect_url"`

	// Scopes are the OAuth scopes requested during connect.
	// Default: ["com.intuit.quickbooks.accounting"]
	Scopes []string `yaml:"scopes"`

	// RefreshSkew refreshes access tokens this long before their recorded
	// expiry to avoid using a token that dies mid-fetch.
	// Default: 2m
	RefreshSkew time.Duration `yaml:"refresh_skew"`

	// SecureCookies marks the OAuth state cookie as Secure. Enable behind
	// HTTPS in production.
	// Default: false
	SecureCookies bool `yaml:"secure_cookies"`

	// Credentials configures where the OAuth client ID and secret come from.
	// They are deliberately not configurable through this YAML file.
	Credentials CredentialsConfig `yaml:"credentials"`
}

// CredentialsConfig configures the source of the OAuth client credentials.
type CredentialsConfig struct {
	// Source selects the secret provider.
	// Options: "env" (environment variables), "file" (directory of secret files)
	// Default: "env"
	Source string `yaml:"source"`

	// EnvPrefix is the environment variable prefix used by the "env" source.
	// The client ID is read from <prefix>CLIENT_ID and the secret from
	// <prefix>CLIENT_SECRET.
	// Default: "INTUIT_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir is the directory holding one file per secret for the "file" source
	// (files "client_id" and "client_secret", mode 0600 or 0400).
	// The directory is watched; updated files take effect without a restart.
	Dir string `yaml:"dir"`
}

// TokensConfig contains configuration for per-realm token persistence.
type TokensConfig struct {
	// Backend selects the token store implementation.
	// Options: "sqlite" (persistent), "memory" (testing only)
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite token store.
	SQLite TokensSQLiteConfig `yaml:"sqlite"`
}

// TokensSQLiteConfig contains settings for the sqlite token store.
type TokensSQLiteConfig struct {
	// Path is the sqlite database file path.
	// Default: "data/tokens.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long sqlite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AuditConfig contains configuration for the export audit trail.
type AuditConfig struct {
	// Enabled enables recording of export events.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the audit store implementation.
	// Options: "sqlite" (persistent), "memory" (testing only)
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite audit store.
	SQLite AuditSQLiteConfig `yaml:"sqlite"`

	// Recorder contains settings for the async event writer.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains settings for pruning old export events.
	Retention RetentionConfig `yaml:"retention"`
}

// AuditSQLiteConfig contains settings for the sqlite audit store.
type AuditSQLiteConfig struct {
	// Path is the sqlite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns limits open connections to the database.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle connections in the pool.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long sqlite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains settings for the async audit event writer.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 256
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing one event to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains settings for pruning old export events.
type RetentionConfig struct {
	// Days is the number of days to retain export events.
	// 0 keeps events forever.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the total number of retained events.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// ArchiveBeforeDelete writes pruned events to a JSON archive first.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory for JSON archives.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "brightbooks"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "ledgerport"
	Subsystem string `yaml:"subsystem"`

	// ExportDurationBuckets overrides the histogram buckets (seconds) for
	// export durations. Empty uses a default covering 100ms to 10min.
	ExportDurationBuckets []float64 `yaml:"export_duration_buckets"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS settings for the HTTP server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings for the HTTP server.
type TLSConfig struct {
	// Enabled serves HTTPS instead of HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key.
	KeyFile string `yaml:"key_file"`
}
