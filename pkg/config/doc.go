// Package config provides configuration management for BrightBooks LedgerPort.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LEDGERPORT_SECTION_FIELD.
// For example:
//
//   - LEDGERPORT_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LEDGERPORT_QBO_PAGE_SIZE overrides qbo.page_size
//   - LEDGERPORT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
// The Intuit OAuth client credentials are deliberately not part of this
// scheme; they come from the secrets provider configured under
// oauth.credentials and never pass through the Config struct.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// The CLI entry points use the process-wide singleton:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// In command wiring
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// Library packages (qbo, tokens, audit) receive their configuration
// explicitly and never read the singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., QBO API base, OAuth endpoint URLs)
//   - Range validation (e.g., page size must be 1-1000)
//   - Format validation (e.g., valid URL format)
//   - Logical validation (e.g., TLS requires cert and key files)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - qbo.page_size: page size must be between 1 and 1000
//	  - security.tls.cert_file: TLS certificate file is required when TLS is enabled
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	qbo:
//	  api_base: "https://sandbox-quickbooks.api.intuit.com"
//
//	oauth:
//	  redirect_url: "http://localhost:8080/oauth/callback"
//
//	tokens:
//	  backend: "sqlite"
//
//	audit:
//	  enabled: true
//	  backend: "sqlite"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton uses read-write
// locks to allow concurrent reads while protecting against concurrent writes
// during reload operations.
package config
