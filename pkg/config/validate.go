package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "qbo.page_size").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateQBO(&cfg.QBO)...)
	errs = append(errs, validateOAuth(&cfg.OAuth)...)
	errs = append(errs, validateTokens(&cfg.Tokens)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateQBO validates QuickBooks Online client configuration.
func validateQBO(cfg *QBOConfig) []FieldError {
	var errs []FieldError

	if cfg.APIBase == "" {
		errs = append(errs, FieldError{
			Field:   "qbo.api_base",
			Message: "API base URL is required",
		})
	} else {
		u, err := url.Parse(cfg.APIBase)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   "qbo.api_base",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, FieldError{
				Field:   "qbo.api_base",
				Message: fmt.Sprintf("invalid URL scheme %q: must be 'http' or 'https'", u.Scheme),
			})
		}
	}

	if cfg.MinorVersion < 0 {
		errs = append(errs, FieldError{
			Field:   "qbo.minor_version",
			Message: "minor version must be non-negative",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "qbo.timeout",
			Message: "timeout must be positive",
		})
	}

	// QBO rejects MAXRESULTS outside 1..1000
	if cfg.PageSize < 1 || cfg.PageSize > 1000 {
		errs = append(errs, FieldError{
			Field:   "qbo.page_size",
			Message: "page size must be between 1 and 1000",
		})
	}

	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "qbo.max_idle_conns",
			Message: "max idle conns must be non-negative",
		})
	}
	if cfg.IdleConnTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "qbo.idle_conn_timeout",
			Message: "idle conn timeout must be positive",
		})
	}

	return errs
}

// validateOAuth validates OAuth configuration.
func validateOAuth(cfg *OAuthConfig) []FieldError {
	var errs []FieldError

	if cfg.AuthURL == "" {
		errs = append(errs, FieldError{
			Field:   "oauth.auth_url",
			Message: "auth URL is required",
		})
	} else if _, err := url.Parse(cfg.AuthURL); err != nil {
		errs = append(errs, FieldError{
			Field:   "oauth.auth_url",
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
	}

	if cfg.TokenURL == "" {
		errs = append(errs, FieldError{
			Field:   "oauth.token_url",
			Message: "token URL is required",
		})
	} else if _, err := url.Parse(cfg.TokenURL); err != nil {
		errs = append(errs, FieldError{
			Field:   "oauth.token_url",
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
	}

	// RedirectURL may be empty for CLI-only deployments that never serve
	// the connect flow, but when present it must parse.
	if cfg.RedirectURL != "" {
		if _, err := url.Parse(cfg.RedirectURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "oauth.redirect_url",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		}
	}

	if len(cfg.Scopes) == 0 {
		errs = append(errs, FieldError{
			Field:   "oauth.scopes",
			Message: "at least one scope is required",
		})
	}

	if cfg.RefreshSkew < 0 {
		errs = append(errs, FieldError{
			Field:   "oauth.refresh_skew",
			Message: "refresh skew must be non-negative",
		})
	}

	validSources := map[string]bool{"env": true, "file": true}
	if cfg.Credentials.Source == "" {
		errs = append(errs, FieldError{
			Field:   "oauth.credentials.source",
			Message: "credentials source is required",
		})
	} else if !validSources[cfg.Credentials.Source] {
		errs = append(errs, FieldError{
			Field:   "oauth.credentials.source",
			Message: fmt.Sprintf("invalid source %q: must be 'env' or 'file'", cfg.Credentials.Source),
		})
	}

	if cfg.Credentials.Source == "file" && cfg.Credentials.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "oauth.credentials.dir",
			Message: "credentials dir is required when source is 'file'",
		})
	}

	return errs
}

// validateTokens validates token store configuration.
func validateTokens(cfg *TokensConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "tokens.backend",
			Message: "backend is required",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "tokens.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "tokens.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "tokens.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If the audit trail is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: "backend is required when audit is enabled",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.path",
			Message: "SQLite path is required when backend is 'sqlite'",
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.retention.archive_path",
			Message: "archive path is required when archive_before_delete is enabled",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	for i, b := range cfg.Metrics.ExportDurationBuckets {
		if b <= 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.export_duration_buckets",
				Message: fmt.Sprintf("bucket %d must be positive", i),
			})
			break
		}
		if i > 0 && b <= cfg.Metrics.ExportDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.export_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	return errs
}

// validateSecurity validates security configuration.
func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.cert_file",
				Message: "TLS certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.key_file",
				Message: "TLS key file is required when TLS is enabled",
			})
		}
	}

	return errs
}
