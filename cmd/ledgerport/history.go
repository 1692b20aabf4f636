package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/audit/retention"
	auditstorage "brightbooks-hq/ledgerport/pkg/audit/storage"
	"brightbooks-hq/ledgerport/pkg/cli"
	"brightbooks-hq/ledgerport/pkg/config"
)

var historyFlags struct {
	backend   string
	timeRange string
	realm     string
	year      int
	report    string
	status    string
	limit     int
	offset    int
	format    string
	output    string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the export audit trail",
	Long: `Query and prune the export audit trail.

Every export attempt, over HTTP or from the CLI, leaves one audit event
with its outcome, record count, and timing.

Subcommands:
  query   - Query export events with filters
  prune   - Delete events past the retention policy

Examples:
  # Last month's exports for one realm
  ledgerport history query --realm 4620816365214 \
    --time-range "2026-07-01T00:00:00Z/2026-08-01T00:00:00Z"

  # Failed exports only
  ledgerport history query --status failed

  # Export to JSON file
  ledgerport history query --format json --output history.json`,
}

var historyQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query export events",
	Long: `Query export events with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-07-01T00:00:00Z/2026-08-01T00:00:00Z"

Examples:
  # Query specific time range
  ledgerport history query --time-range "2026-07-01T00:00:00Z/2026-08-01T00:00:00Z"

  # Filter by realm and year
  ledgerport history query --realm 4620816365214 --year 2024

  # Failed invoice exports
  ledgerport history query --report invoices --status failed

  # Export to JSON
  ledgerport history query --format json --output history.json`,
	RunE: queryHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events past the retention policy",
	Long: `Delete export events older than the configured retention window.

Uses the audit.retention settings from the configuration file: events
older than the retention days are deleted, and when a max record count
is set the oldest events above it go too. With archiving enabled the
deleted events are written to the archive directory first.`,
	RunE: pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyQueryCmd, historyPruneCmd)

	// Flags for query command
	historyQueryCmd.Flags().StringVar(&historyFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	historyQueryCmd.Flags().StringVar(&historyFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	historyQueryCmd.Flags().StringVar(&historyFlags.realm, "realm", "", "filter by realm ID")
	historyQueryCmd.Flags().IntVar(&historyFlags.year, "year", 0, "filter by export year")
	historyQueryCmd.Flags().StringVar(&historyFlags.report, "report", "", "filter by report (invoices, invoice_lines_all)")
	historyQueryCmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by status (completed, failed)")
	historyQueryCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "max results")
	historyQueryCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	historyQueryCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
	historyQueryCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for prune command
	historyPruneCmd.Flags().StringVar(&historyFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
}

// openHistoryStorage opens the audit store named by the --backend flag,
// falling back to the configured backend.
func openHistoryStorage(cfg *config.Config) (audit.Storage, error) {
	backendType := historyFlags.backend
	if backendType == "" {
		backendType = cfg.Audit.Backend
	}

	switch backendType {
	case "sqlite":
		return auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
			WALMode:      cfg.Audit.SQLite.WALMode,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		})
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backendType)
	}
}

func queryHistory(cmd *cobra.Command, args []string) error {
	// Load config to get backend settings
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	// Build query
	query := &audit.Query{
		RealmID: historyFlags.realm,
		Year:    historyFlags.year,
		Report:  historyFlags.report,
		Status:  audit.Status(historyFlags.status),
		Limit:   historyFlags.limit,
		Offset:  historyFlags.offset,
	}

	// Parse time range
	if historyFlags.timeRange != "" {
		parts := strings.Split(historyFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	// Execute query
	ctx := context.Background()
	events, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	// Output results
	output := os.Stdout
	if historyFlags.output != "" {
		output, err = os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch historyFlags.format {
	case "json":
		return outputHistoryJSON(output, events)
	default:
		return outputHistoryText(output, events, query)
	}
}

func outputHistoryText(output *os.File, events []*audit.ExportEvent, query *audit.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total events: %d\n", len(events))
	fmt.Fprintln(output)

	if len(events) == 0 {
		fmt.Fprintln(output, "No events found.")
		return nil
	}

	for i, event := range events {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Event ID: %s\n", event.ID)
		fmt.Fprintf(output, "Started: %s\n", event.StartedAt.Format(time.RFC3339))
		if event.RequestID != "" {
			fmt.Fprintf(output, "Request ID: %s\n", event.RequestID)
		}
		fmt.Fprintf(output, "Realm: %s\n", event.RealmID)
		fmt.Fprintf(output, "Report: %s (%d, %s)\n", event.Report, event.Year, event.Format)
		fmt.Fprintf(output, "Status: %s\n", event.Status)
		if event.Status == audit.StatusCompleted {
			fmt.Fprintf(output, "Records: %d (%d pages, %d bytes)\n",
				event.RecordCount, event.Pages, event.Bytes)
		}
		if event.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", event.Error)
		}
		fmt.Fprintf(output, "Duration: %s\n", event.Duration)

		// Show limited output for large result sets
		if i >= 9 && len(events) > 10 {
			remaining := len(events) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more events\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputHistoryJSON(output *os.File, events []*audit.ExportEvent) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	result := map[string]any{
		"total_events": len(events),
		"events":       events,
	}

	return encoder.Encode(result)
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	// Load config
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openHistoryStorage(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays:       cfg.Audit.Retention.Days,
		ArchiveBeforeDelete: cfg.Audit.Retention.ArchiveBeforeDelete,
		ArchivePath:         cfg.Audit.Retention.ArchivePath,
		MaxRecords:          cfg.Audit.Retention.MaxRecords,
	})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("prune failed: %w", err))
	}

	fmt.Printf("✓ Pruned %d event(s)\n", deleted)
	return nil
}
