package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"brightbooks-hq/ledgerport/pkg/config"
	"brightbooks-hq/ledgerport/pkg/qbo"
	securityTLS "brightbooks-hq/ledgerport/pkg/security/tls"
	"brightbooks-hq/ledgerport/pkg/telemetry/health"
	"brightbooks-hq/ledgerport/pkg/telemetry/metrics"
	"brightbooks-hq/ledgerport/pkg/webapi"
	"brightbooks-hq/ledgerport/pkg/webapi/middleware"
)

// Dependencies carries the assembled components the HTTP surface serves.
// The run command builds them from configuration and owns their shutdown.
type Dependencies struct {
	// Client fetches QuickBooks records for the report endpoints. Required.
	Client *qbo.Client

	// Connector drives the OAuth consent flow. Required.
	Connector webapi.Connector

	// Recorder receives one audit event per export attempt. Nil disables
	// auditing.
	Recorder webapi.ExportRecorder

	// Collector feeds the export counters and serves the metrics
	// endpoint. Nil disables both.
	Collector *metrics.Collector

	// Checker answers the liveness and readiness probes. A checker with
	// no registered checks is used when nil.
	Checker *health.Checker

	// Build identification reported by the version endpoint.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server for report downloads and the OAuth flow.
type Server struct {
	config       *config.Config
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the export server from configuration and assembled
// dependencies.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Checker == nil {
		deps.Checker = health.New(0)
	}
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Security.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting ledgerport server",
			"address", s.config.Server.ListenAddress,
			"tls_enabled", s.config.Security.TLS.Enabled,
		)

		var err error
		if s.config.Security.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.config.Security.TLS.CertFile,
				s.config.Security.TLS.KeyFile,
			)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured shutdown timeout for in-flight exports to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("ledgerport server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// A nil *Collector must stay a nil interface inside the handlers.
	var exportMetrics webapi.MetricsRecorder
	if s.deps.Collector != nil {
		exportMetrics = s.deps.Collector
	}

	invoicesHandler := webapi.NewInvoicesHandler(s.deps.Client, s.deps.Recorder, exportMetrics)
	linesHandler := webapi.NewInvoiceLinesHandler(s.deps.Client, s.deps.Recorder, exportMetrics)
	connectHandler := webapi.NewConnectHandler(s.deps.Connector, s.config.OAuth.SecureCookies)
	callbackHandler := webapi.NewCallbackHandler(s.deps.Connector)

	mux.Handle("GET "+webapi.InvoicesPattern, invoicesHandler)
	mux.Handle("GET "+webapi.InvoiceLinesPattern, linesHandler)
	mux.Handle("GET "+webapi.ConnectPath, connectHandler)
	mux.Handle("GET "+webapi.CallbackPath, callbackHandler)

	mux.Handle("/healthz", s.deps.Checker.LivenessHandler())
	mux.Handle("/readyz", s.deps.Checker.ReadinessHandler())
	mux.Handle("/version", health.VersionHandler(s.deps.Version, s.deps.Commit, s.deps.BuildTime))

	if s.deps.Collector != nil && s.deps.Collector.Enabled() {
		mux.Handle(s.deps.Collector.Path(), s.deps.Collector.Handler())
	}

	// Middleware chain, applied inside out: Recovery ends up outermost,
	// then RequestID, Logging, CORS, and Timeout around the mux.
	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)

	corsConfig := s.convertCORSConfig()
	handler = middleware.CORSMiddleware(corsConfig)(handler)

	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.RequestIDMiddleware(handler)

	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// configureTLS builds the TLS configuration from the security settings.
func (s *Server) configureTLS() (*tls.Config, error) {
	cfg := securityTLS.Config{
		CertFile: s.config.Security.TLS.CertFile,
		KeyFile:  s.config.Security.TLS.KeyFile,
	}
	return cfg.ServerConfig()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:          s.config.Server.CORS.Enabled,
		AllowedOrigins:   s.config.Server.CORS.AllowedOrigins,
		AllowedMethods:   s.config.Server.CORS.AllowedMethods,
		AllowedHeaders:   s.config.Server.CORS.AllowedHeaders,
		ExposedHeaders:   s.config.Server.CORS.ExposedHeaders,
		MaxAge:           s.config.Server.CORS.MaxAge,
		AllowCredentials: s.config.Server.CORS.AllowCredentials,
	}
}
