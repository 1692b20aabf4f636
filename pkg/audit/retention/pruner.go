package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"brightbooks-hq/ledgerport/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain export events.
	// 0 means keep events forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving events before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived events.
	ArchivePath string

	// MaxRecords is the maximum number of events to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
		MaxRecords:          0,
	}
}

// Pruner enforces retention policies on export audit events.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes export events older than the retention period
// or exceeding the max record count.
//
// Pruning happens in two phases:
// 1. Age-based: delete events older than retention_days
// 2. Count-based: if total events > max_records, delete oldest
//
// Both can run together. Returns the total number of events deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	// Phase 1: Prune by retention period
	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned events by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	// Phase 2: Prune by max record count
	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned events by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no events pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("audit pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes events older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	query := &audit.Query{
		EndTime: &cutoff,
	}

	// Archive before delete if configured
	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, query); err != nil {
			return 0, audit.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes oldest events if total count exceeds max_records.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	if count <= p.config.MaxRecords {
		p.logger.Debug("event count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	p.logger.Info("event count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	allEvents, err := p.storage.Query(ctx, &audit.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to query events: %w", err)
	}

	if len(allEvents) == 0 {
		p.logger.Debug("no events found to delete")
		return 0, nil
	}

	// Sort events by start time (oldest first)
	sort.Slice(allEvents, func(i, j int) bool {
		return allEvents[i].StartedAt.Before(allEvents[j].StartedAt)
	})

	// Determine how many to actually delete (in case count changed)
	actualToDelete := len(allEvents) - int(p.config.MaxRecords)
	if actualToDelete <= 0 {
		p.logger.Debug("event count within limit after query")
		return 0, nil
	}
	if actualToDelete > len(allEvents) {
		actualToDelete = len(allEvents)
	}

	// Cutoff time: start time of the last event to delete
	cutoffTime := allEvents[actualToDelete-1].StartedAt

	p.logger.Debug("calculated cutoff time for count-based pruning",
		"cutoff_time", cutoffTime,
		"events_to_delete", actualToDelete,
	)

	deleteQuery := &audit.Query{
		EndTime: &cutoffTime,
	}

	// Archive if configured
	if p.config.ArchiveBeforeDelete {
		eventsToArchive := allEvents[:actualToDelete]
		if err := p.archiveEvents(eventsToArchive, fmt.Sprintf("exports-count-%s.json", time.Now().Format("2006-01-02-150405"))); err != nil {
			return 0, fmt.Errorf("archive failed: %w", err)
		}
	}

	deleted, err := p.storage.Delete(ctx, deleteQuery)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// archive writes events matching the query to a dated JSON archive file.
func (p *Pruner) archive(ctx context.Context, query *audit.Query) error {
	p.logger.Info("archiving export events before deletion")

	events, err := p.storage.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query events for archiving: %w", err)
	}

	if len(events) == 0 {
		p.logger.Debug("no events to archive")
		return nil
	}

	return p.archiveEvents(events, fmt.Sprintf("exports-%s.json", time.Now().Format("2006-01-02")))
}

// archiveEvents writes a list of export events to a JSON archive file.
func (p *Pruner) archiveEvents(events []*audit.ExportEvent, filename string) error {
	if len(events) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode events for archive: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath, filename)
	if err := os.WriteFile(archiveFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}

	p.logger.Info("export events archived",
		"archive_file", archiveFile,
		"event_count", len(events),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
