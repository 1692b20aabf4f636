// Package logging builds the process logger with credential redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging in JSON or text format
//   - Credential redaction (bearer tokens, OAuth parameters, client secrets)
//   - Context-aware logging with request and realm correlation
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Build and install the process logger
//	logger, err := logging.Setup(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//
//	// Component loggers derived anywhere in the process share the handler
//	log := slog.Default().With("component", "tokens.manager")
//	log.Info("token refreshed", "realm_id", "1234567890")
//
//	// Context-annotated logging inside request handlers
//	logging.FromContext(r.Context()).Info("export started")
//
// # Redaction
//
// Redaction runs inside the handler, so every record passes through it
// no matter which derived logger emitted it. Attributes whose key names
// credential material (token, secret, password, authorization) are
// masked entirely:
//
//	log.Info("refresh failed", "refresh_token", tok)  // refresh_token=***
//
// String values are additionally scanned for credential patterns:
//
//   - Authorization headers: "Bearer eyJhb..." becomes "Bearer ***"
//   - Token endpoint bodies: "refresh_token=AB1..." becomes "refresh_token=***"
//   - JSON token fields: "access_token":"..." becomes "access_token":"***"
//   - Email addresses in invoice data become "***@***"
package logging
