package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/audit/recorder"
	"brightbooks-hq/ledgerport/pkg/cli"
	"brightbooks-hq/ledgerport/pkg/config"
	"brightbooks-hq/ledgerport/pkg/export"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
	"brightbooks-hq/ledgerport/pkg/tokens"
	"brightbooks-hq/ledgerport/pkg/webapi"
)

var exportFlags struct {
	realm  string
	year   int
	report string
	format string
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run a one-shot report export",
	Long: `Fetch one year of invoices for a connected realm and write the
rendered report to a file or stdout, without running the server.

The realm must already be connected; the stored refresh token is used to
obtain access. Page-level progress is reported on stderr, so piping
stdout stays clean.

Examples:
  # Invoices for 2024 as JSON on stdout
  ledgerport export --realm 4620816365214 --year 2024

  # Invoice lines as CSV to a file
  ledgerport export --realm 4620816365214 --year 2024 \
    --report invoice_lines_all --format csv -o lines_2024.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.realm, "realm", "", "QuickBooks realm (company) ID")
	exportCmd.Flags().IntVar(&exportFlags.year, "year", 0, "transaction year to export")
	exportCmd.Flags().StringVar(&exportFlags.report, "report", webapi.ReportInvoices, "report: invoices, invoice_lines_all")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "output format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("realm")
	_ = exportCmd.MarkFlagRequired("year")
}

func runExport(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Logs go to stderr so report data on stdout stays parseable
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.Setup(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    true,
		Writer:    os.Stderr,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	// Validate flags before touching the network
	format, err := export.ParseFormat(exportFlags.format)
	if err != nil {
		return fmt.Errorf("invalid format %q (supported: json, csv)", exportFlags.format)
	}
	if exportFlags.year < 1000 || exportFlags.year > 9999 {
		return fmt.Errorf("year must be a four digit number")
	}
	switch exportFlags.report {
	case webapi.ReportInvoices, webapi.ReportInvoiceLines:
	default:
		return fmt.Errorf("unknown report %q (supported: %s, %s)",
			exportFlags.report, webapi.ReportInvoices, webapi.ReportInvoiceLines)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// OAuth credentials and token manager
	credentials, closeSecrets, err := buildCredentials(cfg)
	if err != nil {
		return cli.NewConfigError("oauth.credentials", err.Error())
	}
	defer closeSecrets()

	tokenStorage, err := buildTokenStorage(cfg)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	defer tokenStorage.Close()

	manager, err := tokens.NewManager(tokens.Config{
		Credentials: credentials,
		Storage:     tokenStorage,
		AuthURL:     cfg.OAuth.AuthURL,
		TokenURL:    cfg.OAuth.TokenURL,
		RedirectURL: cfg.OAuth.RedirectURL,
		Scopes:      cfg.OAuth.Scopes,
		RefreshSkew: cfg.OAuth.RefreshSkew,
	})
	if err != nil {
		return cli.NewCommandError("export", fmt.Errorf("failed to create token manager: %w", err))
	}
	defer manager.Close()

	client := qbo.NewClient(qbo.ClientConfig{
		APIBase:         cfg.QBO.APIBase,
		MinorVersion:    cfg.QBO.MinorVersion,
		Timeout:         cfg.QBO.Timeout,
		PageSize:        cfg.QBO.PageSize,
		MaxIdleConns:    cfg.QBO.MaxIdleConns,
		IdleConnTimeout: cfg.QBO.IdleConnTimeout,
	}, qbo.TokenProviderFunc(manager.AccessToken))

	// One-shot exports leave the same audit trail as server downloads
	var auditRecorder *recorder.Recorder
	if cfg.Audit.Enabled {
		auditStore, err := buildAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("export", err)
		}
		defer auditStore.Close()

		auditRecorder = recorder.NewRecorder(auditStore, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
		})
		defer auditRecorder.Close()
	}

	event := audit.NewEvent("", exportFlags.realm, exportFlags.year, exportFlags.report, string(format))

	progress := cli.NewPageProgress(os.Stderr)
	counter := &pageCounter{}
	records, err := client.WithObserver(progress).WithObserver(counter).
		FetchAll(ctx, qbo.InvoicesForYear(exportFlags.realm, exportFlags.year))
	if err != nil {
		event.Pages = counter.pages
		event.Fail(err)
		recordExportEvent(auditRecorder, event)
		return cli.NewCommandError("export", err)
	}

	var payload *export.Export
	switch exportFlags.report {
	case webapi.ReportInvoiceLines:
		payload, err = export.InvoiceLines(records, format, exportFlags.year, exportFlags.realm)
	default:
		payload, err = export.Invoices(records, format, exportFlags.year, exportFlags.realm)
	}
	if err != nil {
		event.Fail(err)
		recordExportEvent(auditRecorder, event)
		return cli.NewCommandError("export", err)
	}

	event.Complete(len(records), counter.pages, int64(len(payload.Data)))
	recordExportEvent(auditRecorder, event)

	// Write the report
	out := os.Stdout
	if exportFlags.output != "" {
		out, err = os.Create(exportFlags.output)
		if err != nil {
			return cli.NewCommandError("export", fmt.Errorf("failed to create output file: %w", err))
		}
		defer out.Close()
	}
	if _, err := out.Write(payload.Data); err != nil {
		return cli.NewCommandError("export", fmt.Errorf("failed to write report: %w", err))
	}

	if exportFlags.output != "" {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s (%d records, %d bytes)\n",
			exportFlags.output, len(records), len(payload.Data))
	}
	return nil
}

// recordExportEvent stores the audit event, tolerating a nil recorder
// and logging failures without failing the export.
func recordExportEvent(rec *recorder.Recorder, event *audit.ExportEvent) {
	if rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Record(ctx, event); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record audit event: %v\n", err)
	}
}

// pageCounter captures the attempted page count for the audit event.
type pageCounter struct {
	pages int
}

func (pc *pageCounter) PageFetched(page, records int, duration time.Duration, err error) {}

func (pc *pageCounter) FetchDone(pages, records int, err error) {
	pc.pages = pages
}
