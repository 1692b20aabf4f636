package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LEDGERPORT_SECTION_FIELD (e.g., LEDGERPORT_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format LEDGERPORT_SECTION_FIELD.
// The OAuth client credentials are never read here; they come only from the
// secrets provider configured under oauth.credentials.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("LEDGERPORT_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("LEDGERPORT_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("LEDGERPORT_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("LEDGERPORT_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}

	// QBO overrides
	if val := os.Getenv("LEDGERPORT_QBO_API_BASE"); val != "" {
		cfg.QBO.APIBase = val
	}
	if val := os.Getenv("LEDGERPORT_QBO_MINOR_VERSION"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.QBO.MinorVersion = i
		}
	}
	if val := os.Getenv("LEDGERPORT_QBO_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.QBO.Timeout = d
		}
	}
	if val := os.Getenv("LEDGERPORT_QBO_PAGE_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.QBO.PageSize = i
		}
	}

	// OAuth overrides
	if val := os.Getenv("LEDGERPORT_OAUTH_REDIRECT_URL"); val != "" {
		cfg.OAuth.RedirectURL = val
	}
	if val := os.Getenv("LEDGERPORT_OAUTH_REFRESH_SKEW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.OAuth.RefreshSkew = d
		}
	}
	if val := os.Getenv("LEDGERPORT_OAUTH_SECURE_COOKIES"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.OAuth.SecureCookies = b
		}
	}
	if val := os.Getenv("LEDGERPORT_OAUTH_CREDENTIALS_SOURCE"); val != "" {
		cfg.OAuth.Credentials.Source = val
	}
	if val := os.Getenv("LEDGERPORT_OAUTH_CREDENTIALS_DIR"); val != "" {
		cfg.OAuth.Credentials.Dir = val
	}

	// Tokens overrides
	if val := os.Getenv("LEDGERPORT_TOKENS_BACKEND"); val != "" {
		cfg.Tokens.Backend = val
	}
	if val := os.Getenv("LEDGERPORT_TOKENS_SQLITE_PATH"); val != "" {
		cfg.Tokens.SQLite.Path = val
	}

	// Audit overrides
	if val := os.Getenv("LEDGERPORT_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("LEDGERPORT_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("LEDGERPORT_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("LEDGERPORT_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("LEDGERPORT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("LEDGERPORT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("LEDGERPORT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("LEDGERPORT_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Security overrides
	if val := os.Getenv("LEDGERPORT_SECURITY_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.TLS.Enabled = b
		}
	}
	if val := os.Getenv("LEDGERPORT_SECURITY_TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
	}
	if val := os.Getenv("LEDGERPORT_SECURITY_TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
}
