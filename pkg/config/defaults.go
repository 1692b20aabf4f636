package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 300 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 300 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = false

	// QBO defaults
	DefaultQBOAPIBase         = "https://quickbooks.api.intuit.com"
	DefaultQBOMinorVersion    = 75
	DefaultQBOTimeout         = 60 * time.Second
	DefaultQBOPageSize        = 1000
	DefaultQBOMaxIdleConns    = 10
	DefaultQBOIdleConnTimeout = 90 * time.Second

	// OAuth defaults
	DefaultOAuthAuthURL     = "https://appcenter.intuit.com/connect/oauth2"
	DefaultOAuthTokenURL    = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	DefaultOAuthScope       = "com.intuit.quickbooks.accounting"
	DefaultOAuthRefreshSkew = 2 * time.Minute

	// Credentials defaults
	DefaultCredentialsSource    = "env"
	DefaultCredentialsEnvPrefix = "INTUIT_"

	// Tokens defaults
	DefaultTokensBackend           = "sqlite"
	DefaultTokensSQLitePath        = "data/tokens.db"
	DefaultTokensSQLiteBusyTimeout = 5 * time.Second

	// Audit defaults
	DefaultAuditEnabled              = true
	DefaultAuditBackend              = "sqlite"
	DefaultAuditSQLitePath           = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns   = 10
	DefaultAuditSQLiteMaxIdleConns   = 5
	DefaultAuditSQLiteWALMode        = true
	DefaultAuditSQLiteBusyTimeout    = 5 * time.Second
	DefaultAuditRecorderAsyncBuffer  = 256
	DefaultAuditRecorderWriteTimeout = 5 * time.Second
	DefaultAuditRetentionDays        = 90
	DefaultAuditRetentionSchedule    = "0 3 * * *"
	DefaultAuditRetentionArchive     = false
	DefaultAuditRetentionArchivePath = "data/archives/"
	DefaultAuditRetentionMaxRecords  = int64(0)

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "brightbooks"
	DefaultMetricsSubsystem = "ledgerport"

	// Security defaults
	DefaultTLSEnabled = false
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(cfg)

	// QBO defaults
	if cfg.QBO.APIBase == "" {
		cfg.QBO.APIBase = DefaultQBOAPIBase
	}
	if cfg.QBO.MinorVersion == 0 {
		cfg.QBO.MinorVersion = DefaultQBOMinorVersion
	}
	if cfg.QBO.Timeout == 0 {
		cfg.QBO.Timeout = DefaultQBOTimeout
	}
	if cfg.QBO.PageSize == 0 {
		cfg.QBO.PageSize = DefaultQBOPageSize
	}
	if cfg.QBO.MaxIdleConns == 0 {
		cfg.QBO.MaxIdleConns = DefaultQBOMaxIdleConns
	}
	if cfg.QBO.IdleConnTimeout == 0 {
		cfg.QBO.IdleConnTimeout = DefaultQBOIdleConnTimeout
	}

	// OAuth defaults
	if cfg.OAuth.AuthURL == "" {
		cfg.OAuth.AuthURL = DefaultOAuthAuthURL
	}
	if cfg.OAuth.TokenURL == "" {
		cfg.OAuth.TokenURL = DefaultOAuthTokenURL
	}
	if len(cfg.OAuth.Scopes) == 0 {
		cfg.OAuth.Scopes = []string{DefaultOAuthScope}
	}
	if cfg.OAuth.RefreshSkew == 0 {
		cfg.OAuth.RefreshSkew = DefaultOAuthRefreshSkew
	}
	if cfg.OAuth.Credentials.Source == "" {
		cfg.OAuth.Credentials.Source = DefaultCredentialsSource
	}
	if cfg.OAuth.Credentials.EnvPrefix == "" {
		cfg.OAuth.Credentials.EnvPrefix = DefaultCredentialsEnvPrefix
	}

	// Tokens defaults
	if cfg.Tokens.Backend == "" {
		cfg.Tokens.Backend = DefaultTokensBackend
	}
	if cfg.Tokens.SQLite.Path == "" {
		cfg.Tokens.SQLite.Path = DefaultTokensSQLitePath
	}
	if cfg.Tokens.SQLite.BusyTimeout == 0 {
		cfg.Tokens.SQLite.BusyTimeout = DefaultTokensSQLiteBusyTimeout
	}

	// Audit defaults
	applyAuditDefaults(cfg)

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}

	// Security defaults are false (zero values), which is correct
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Server.CORS

	// Enabled defaults to true unless the section was left entirely empty
	// by someone who disabled it explicitly. We cannot distinguish the two
	// with plain bools, so any populated field counts as intent.
	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "Content-Disposition"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}

	// AllowCredentials defaults to false (zero value), which is correct
}

// applyAuditDefaults applies default values to audit configuration.
func applyAuditDefaults(cfg *Config) {
	audit := &cfg.Audit

	// Enabled defaults to true unless the whole section is empty and the
	// caller never touched it. Any populated field counts as intent.
	if !audit.Enabled {
		hasAnyConfig := audit.Backend != "" ||
			audit.SQLite.Path != "" ||
			audit.Recorder.AsyncBuffer > 0 ||
			audit.Retention.Days > 0

		if !hasAnyConfig {
			audit.Enabled = DefaultAuditEnabled
		}
	}

	if audit.Backend == "" {
		audit.Backend = DefaultAuditBackend
	}

	// SQLite defaults
	if audit.SQLite.Path == "" {
		audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if audit.SQLite.MaxOpenConns == 0 {
		audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if audit.SQLite.MaxIdleConns == 0 {
		audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if !audit.SQLite.WALMode {
		audit.SQLite.WALMode = DefaultAuditSQLiteWALMode
	}
	if audit.SQLite.BusyTimeout == 0 {
		audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}

	// Recorder defaults
	if audit.Recorder.AsyncBuffer == 0 {
		audit.Recorder.AsyncBuffer = DefaultAuditRecorderAsyncBuffer
	}
	if audit.Recorder.WriteTimeout == 0 {
		audit.Recorder.WriteTimeout = DefaultAuditRecorderWriteTimeout
	}

	// Retention defaults
	if audit.Retention.Days == 0 {
		audit.Retention.Days = DefaultAuditRetentionDays
	}
	if audit.Retention.PruneSchedule == "" {
		audit.Retention.PruneSchedule = DefaultAuditRetentionSchedule
	}
	if audit.Retention.ArchivePath == "" {
		audit.Retention.ArchivePath = DefaultAuditRetentionArchivePath
	}
	if audit.Retention.MaxRecords == 0 {
		audit.Retention.MaxRecords = DefaultAuditRetentionMaxRecords
	}
}
