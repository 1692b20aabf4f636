// Package retention provides retention policy enforcement for export
// audit events.
//
// # Retention Policy
//
// The retention package automatically prunes old export events:
//
//   - Configurable retention period (days)
//   - Scheduled pruning (cron expression)
//   - Optional archiving before deletion
//   - Configurable max record count
//
// # Basic Usage
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays:       90,
//	    PruneSchedule:       "0 3 * * *", // Daily at 3 AM
//	    ArchiveBeforeDelete: true,
//	    ArchivePath:         "data/archives/",
//	})
//
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
// # Manual Pruning
//
//	deleted, err := pruner.Prune(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("Deleted %d old export events", deleted)
//
// # Archiving
//
// If archiving is enabled, events are written to JSON before deletion.
// Archive files are stored in the configured archive path and named by
// date, e.g. exports-2024-01-15.json.
//
// # Scheduling
//
// The pruner runs on a cron schedule:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "*/1 * * * *": Every minute (testing only)
//
// If no schedule is configured (empty PruneSchedule), the scheduler
// does nothing and Start() returns immediately without error.
package retention
