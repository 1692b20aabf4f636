// Package server ties the HTTP surface together: routes, middleware,
// TLS, and lifecycle management for the export service.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Registers the report, OAuth, health, version, and metrics routes
//   - Chains middleware for cross-cutting concerns
//   - Configures TLS termination
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// Domain components (the QuickBooks client, token manager, audit
// recorder, metrics collector, health checker) are assembled by the
// caller and handed in as Dependencies; the run command owns their
// lifetimes.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "brightbooks-hq/ledgerport/pkg/config"
//	    "brightbooks-hq/ledgerport/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Client:    qboClient,
//	    Connector: tokenManager,
//	    Recorder:  auditRecorder,
//	    Collector: collector,
//	    Checker:   checker,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET /reports/invoices/year/{year} - Raw invoice export download
//   - GET /reports/invoice_lines_all/year/{year} - Per-line export download
//   - GET /connect - Redirect to the Intuit consent screen
//   - GET /oauth/callback - Complete the OAuth consent flow
//   - GET /healthz - Liveness probe (always returns 200)
//   - GET /readyz - Readiness probe (storage ping checks)
//   - GET /version - Build identification
//   - GET /metrics - Prometheus metrics (path configurable)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: Recovers from panics and returns 500 error
//  2. RequestID: Generates unique request ID for tracing
//  3. Logging: Logs request/response details with the request ID
//  4. CORS: Adds Cross-Origin Resource Sharing headers
//  5. Timeout: Enforces the per-request deadline
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving
// SIGTERM or SIGINT, or when its context is cancelled:
//
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    slog.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for in-flight exports to complete (up to shutdown timeout)
//  3. Forces connection closure if the timeout is exceeded
//
// # TLS Support
//
// The server supports TLS 1.3 with configurable certificates:
//
//	security:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//
// TLS configuration enforces TLS 1.3 minimum and secure cipher suites.
//
// # Thread Safety
//
// All server operations are safe for concurrent use.
package server
