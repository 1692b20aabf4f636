package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/audit/recorder"
	"brightbooks-hq/ledgerport/pkg/audit/retention"
	auditstorage "brightbooks-hq/ledgerport/pkg/audit/storage"
	"brightbooks-hq/ledgerport/pkg/cli"
	"brightbooks-hq/ledgerport/pkg/config"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/security/secrets"
	"brightbooks-hq/ledgerport/pkg/server"
	"brightbooks-hq/ledgerport/pkg/telemetry/health"
	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
	"brightbooks-hq/ledgerport/pkg/telemetry/metrics"
	"brightbooks-hq/ledgerport/pkg/tokens"
	tokenstorage "brightbooks-hq/ledgerport/pkg/tokens/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the LedgerPort export server",
	Long: `Start the LedgerPort export server with the specified configuration.

The server listens on the configured address and serves yearly invoice
report downloads, the OAuth connect flow, and health and metrics endpoints.

Examples:
  # Start with default config
  ledgerport run

  # Start with custom config
  ledgerport run --config /etc/ledgerport/config.yaml

  # Override listen address
  ledgerport run --listen 0.0.0.0:8080

  # Validate config without starting server
  ledgerport run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	// Initialize logging based on config
	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    true,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// OAuth client credentials from the secrets provider chain
	credentials, closeSecrets, err := buildCredentials(cfg)
	if err != nil {
		return cli.NewConfigError("oauth.credentials", err.Error())
	}
	defer closeSecrets()

	// Token storage backend
	tokenStorage, err := buildTokenStorage(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer tokenStorage.Close()

	fmt.Println("✓ Token store initialized")

	// Metrics collector (all Record methods no-op when disabled)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Token manager handles refresh and the auth-code exchange
	manager, err := tokens.NewManager(tokens.Config{
		Credentials: credentials,
		Storage:     tokenStorage,
		AuthURL:     cfg.OAuth.AuthURL,
		TokenURL:    cfg.OAuth.TokenURL,
		RedirectURL: cfg.OAuth.RedirectURL,
		Scopes:      cfg.OAuth.Scopes,
		RefreshSkew: cfg.OAuth.RefreshSkew,
		OnRefresh:   collector.RecordTokenRefresh,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create token manager: %w", err))
	}
	defer manager.Close()

	// QBO fetch client
	client := qbo.NewClient(qbo.ClientConfig{
		APIBase:         cfg.QBO.APIBase,
		MinorVersion:    cfg.QBO.MinorVersion,
		Timeout:         cfg.QBO.Timeout,
		PageSize:        cfg.QBO.PageSize,
		MaxIdleConns:    cfg.QBO.MaxIdleConns,
		IdleConnTimeout: cfg.QBO.IdleConnTimeout,
		Observer:        fetchMetrics{collector: collector},
	}, qbo.TokenProviderFunc(manager.AccessToken))

	// Audit recording (if enabled)
	var auditRecorder *recorder.Recorder
	var auditStore audit.Storage
	if cfg.Audit.Enabled {
		slog.Info("initializing audit recording", "backend", cfg.Audit.Backend)

		auditStore, err = buildAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer auditStore.Close()

		auditRecorder = recorder.NewRecorder(auditStore, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
		})
		defer auditRecorder.Close()

		// Start retention scheduler if a schedule is configured
		if cfg.Audit.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(auditStore, &retention.Config{
				RetentionDays:       cfg.Audit.Retention.Days,
				PruneSchedule:       cfg.Audit.Retention.PruneSchedule,
				ArchiveBeforeDelete: cfg.Audit.Retention.ArchiveBeforeDelete,
				ArchivePath:         cfg.Audit.Retention.ArchivePath,
				MaxRecords:          cfg.Audit.Retention.MaxRecords,
			})
			scheduler := retention.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					slog.Debug("audit retention scheduler started", "next_prune", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	// Health checks over the live backends
	checker := health.New(0)
	checker.RegisterCheck("token_storage", func(ctx context.Context) error {
		_, err := tokenStorage.List(ctx)
		return err
	})
	if auditStore != nil {
		store := auditStore
		checker.RegisterCheck("audit_store", func(ctx context.Context) error {
			_, err := store.Count(ctx, &audit.Query{Limit: 1})
			return err
		})
	}

	srv := server.NewServer(cfg, server.Dependencies{
		Client:    client,
		Connector: manager,
		Recorder:  auditRecorder,
		Collector: collector,
		Checker:   checker,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	fmt.Println()
	fmt.Printf("✓ Serving on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if collector.Enabled() {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, collector.Path())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until signal, context cancellation, or listener failure
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// fetchMetrics feeds client fetch events into the Prometheus collector.
type fetchMetrics struct {
	collector *metrics.Collector
}

func (m fetchMetrics) PageFetched(page, records int, duration time.Duration, err error) {
	m.collector.RecordPageRequest(qbo.RequestStatus(err), duration)
}

func (m fetchMetrics) FetchDone(pages, records int, err error) {
	if err == nil {
		m.collector.RecordFetch(pages)
	}
}

// buildCredentials assembles the OAuth client credential source from the
// configured secrets providers. The returned cleanup stops any file
// watcher; call it when the process shuts down.
func buildCredentials(cfg *config.Config) (*secrets.Credentials, func(), error) {
	var providers []secrets.Provider
	cleanup := func() {}

	switch cfg.OAuth.Credentials.Source {
	case "env":
		providers = append(providers, secrets.NewEnvProvider(cfg.OAuth.Credentials.EnvPrefix))
	case "file":
		fileProvider, err := secrets.NewFileProvider(cfg.OAuth.Credentials.Dir, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create file secrets provider: %w", err)
		}
		providers = append(providers, fileProvider)
		cleanup = func() {
			if err := fileProvider.Close(); err != nil {
				slog.Warn("failed to close file secrets provider", "error", err)
			}
		}
	default:
		return nil, nil, fmt.Errorf("unsupported credentials source: %s (supported: env, file)", cfg.OAuth.Credentials.Source)
	}

	manager := secrets.NewManager(providers, secrets.CacheConfig{
		Enabled: true,
		TTL:     5 * time.Minute,
		MaxSize: 16,
	})

	return secrets.NewCredentials(manager), cleanup, nil
}

// buildTokenStorage creates the token persistence backend.
func buildTokenStorage(cfg *config.Config) (tokenstorage.Backend, error) {
	switch cfg.Tokens.Backend {
	case "sqlite":
		backend, err := tokenstorage.NewSQLiteBackendWithConfig(tokenstorage.SQLiteBackendConfig{
			DBPath:      cfg.Tokens.SQLite.Path,
			BusyTimeout: cfg.Tokens.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite token storage: %w", err)
		}
		return backend, nil
	case "memory":
		return tokenstorage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported token backend: %s (supported: sqlite, memory)", cfg.Tokens.Backend)
	}
}

// buildAuditStorage creates the audit event store.
func buildAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		store, err := auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
			WALMode:      cfg.Audit.SQLite.WALMode,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite audit storage: %w", err)
		}
		return store, nil
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s (supported: sqlite, memory)", cfg.Audit.Backend)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("BrightBooks LedgerPort v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("token backend", "backend", cfg.Tokens.Backend)
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
	if cfg.Telemetry.Metrics.Enabled {
		slog.Debug("metrics enabled", "path", cfg.Telemetry.Metrics.Path)
	}
}
