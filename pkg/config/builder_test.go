package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)

	// Tests never talk to real Intuit endpoints
	cfg.QBO.APIBase = "https://sandbox-quickbooks.api.intuit.com"
	cfg.OAuth.RedirectURL = "http://localhost:8080/oauth/callback"
	cfg.Tokens.Backend = "memory"
	cfg.Audit.Backend = "memory"

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRequestTimeout sets the per-request deadline.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithAPIBase sets the QBO API base URL.
func (b *ConfigBuilder) WithAPIBase(base string) *ConfigBuilder {
	b.cfg.QBO.APIBase = base
	return b
}

// WithPageSize sets the QBO query page size.
func (b *ConfigBuilder) WithPageSize(n int) *ConfigBuilder {
	b.cfg.QBO.PageSize = n
	return b
}

// WithQBOTimeout sets the per-query timeout.
func (b *ConfigBuilder) WithQBOTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.QBO.Timeout = d
	return b
}

// WithTokensBackend sets the token store backend.
func (b *ConfigBuilder) WithTokensBackend(backend string) *ConfigBuilder {
	b.cfg.Tokens.Backend = backend
	return b
}

// WithTokensSQLitePath sets the sqlite token store path.
func (b *ConfigBuilder) WithTokensSQLitePath(path string) *ConfigBuilder {
	b.cfg.Tokens.SQLite.Path = path
	b.cfg.Tokens.Backend = "sqlite"
	return b
}

// WithAuditEnabled sets whether the audit trail is enabled.
func (b *ConfigBuilder) WithAuditEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Audit.Enabled = enabled
	return b
}

// WithAuditSQLitePath sets the sqlite audit store path.
func (b *ConfigBuilder) WithAuditSQLitePath(path string) *ConfigBuilder {
	b.cfg.Audit.SQLite.Path = path
	b.cfg.Audit.Backend = "sqlite"
	return b
}

// WithCredentialsDir configures file-based OAuth credentials.
func (b *ConfigBuilder) WithCredentialsDir(dir string) *ConfigBuilder {
	b.cfg.OAuth.Credentials.Source = "file"
	b.cfg.OAuth.Credentials.Dir = dir
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Security.TLS.Enabled = true
	b.cfg.Security.TLS.CertFile = certFile
	b.cfg.Security.TLS.KeyFile = keyFile
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
