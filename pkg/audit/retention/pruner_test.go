package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/audit/storage"
)

// eventAt builds a completed export event that started at the given time.
func eventAt(id string, startedAt time.Time) *audit.ExportEvent {
	return &audit.ExportEvent{
		ID:          id,
		RequestID:   "req-" + id,
		RealmID:     "realm-1",
		Year:        2024,
		Report:      "invoices",
		Format:      "json",
		Status:      audit.StatusCompleted,
		RecordCount: 10,
		Pages:       1,
		Bytes:       500,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(time.Second),
		Duration:    time.Second,
	}
}

// TestPruner_PruneOldEvents tests pruning events older than the retention period.
func TestPruner_PruneOldEvents(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7
	config.ArchiveBeforeDelete = false

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	events := []*audit.ExportEvent{
		eventAt("old-1", now.AddDate(0, 0, -10)),
		eventAt("old-2", now.AddDate(0, 0, -8)),
		eventAt("recent-1", now.AddDate(0, 0, -5)),
		eventAt("recent-2", now.AddDate(0, 0, -3)),
	}

	for _, event := range events {
		if err := store.Store(ctx, event); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 4 {
		t.Fatalf("Expected 4 events, got %d", count)
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 2 {
		t.Errorf("Expected 2 deleted events, got %d", deleted)
	}

	count, _ = store.Count(ctx, &audit.Query{})
	if count != 2 {
		t.Errorf("Expected 2 remaining events, got %d", count)
	}

	results, _ := store.Query(ctx, &audit.Query{})
	for _, r := range results {
		if r.ID == "old-1" || r.ID == "old-2" {
			t.Errorf("Old event %s should have been deleted", r.ID)
		}
	}
}

// TestPruner_RetentionDisabled tests that pruning is skipped when retention is 0.
func TestPruner_RetentionDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 0 // Disabled

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	_ = store.Store(ctx, eventAt("old-event", now.AddDate(0, 0, -100)))

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 0 {
		t.Errorf("Expected 0 deleted events when retention disabled, got %d", deleted)
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 1 {
		t.Errorf("Expected 1 event to remain, got %d", count)
	}
}

// TestPruner_ArchiveBeforeDelete tests archiving events before deletion.
func TestPruner_ArchiveBeforeDelete(t *testing.T) {
	store := storage.NewMemoryStorage()

	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.RetentionDays = 7
	config.ArchiveBeforeDelete = true
	config.ArchivePath = tmpDir

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	_ = store.Store(ctx, eventAt("old-1", now.AddDate(0, 0, -10)))
	_ = store.Store(ctx, eventAt("old-2", now.AddDate(0, 0, -8)))

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 2 {
		t.Errorf("Expected 2 deleted events, got %d", deleted)
	}

	files, err := filepath.Glob(filepath.Join(tmpDir, "exports-*.json"))
	if err != nil {
		t.Fatalf("Failed to list archive files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 archive file, got %d", len(files))
	}

	// Verify the archive parses back into the deleted events
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("Failed to read archive file: %v", err)
	}

	var archived []*audit.ExportEvent
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("Archive file is not valid JSON: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("Expected 2 archived events, got %d", len(archived))
	}
}

// TestPruner_NoEventsToDelete tests pruning when no events match.
func TestPruner_NoEventsToDelete(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	_ = store.Store(ctx, eventAt("recent-1", now.AddDate(0, 0, -1)))
	_ = store.Store(ctx, eventAt("recent-2", now.AddDate(0, 0, -2)))

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 0 {
		t.Errorf("Expected 0 deleted events, got %d", deleted)
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 2 {
		t.Errorf("Expected 2 events to remain, got %d", count)
	}
}

// TestPruner_EmptyStorage tests pruning empty storage.
func TestPruner_EmptyStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7

	pruner := NewPruner(store, config)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 0 {
		t.Errorf("Expected 0 deleted events from empty storage, got %d", deleted)
	}
}

// TestPruner_CustomRetentionPeriod tests various retention periods.
func TestPruner_CustomRetentionPeriod(t *testing.T) {
	tests := []struct {
		name          string
		retentionDays int
		eventAge      int
		shouldDelete  bool
	}{
		{
			name:          "30 day retention - 35 days old",
			retentionDays: 30,
			eventAge:      35,
			shouldDelete:  true,
		},
		{
			name:          "30 day retention - 25 days old",
			retentionDays: 30,
			eventAge:      25,
			shouldDelete:  false,
		},
		{
			name:          "90 day retention - 100 days old",
			retentionDays: 90,
			eventAge:      100,
			shouldDelete:  true,
		},
		{
			name:          "1 day retention - 2 days old",
			retentionDays: 1,
			eventAge:      2,
			shouldDelete:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			config := DefaultConfig()
			config.RetentionDays = tt.retentionDays

			pruner := NewPruner(store, config)

			ctx := context.Background()
			now := time.Now()

			_ = store.Store(ctx, eventAt("test-event", now.AddDate(0, 0, -tt.eventAge)))

			deleted, err := pruner.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}

			if tt.shouldDelete && deleted != 1 {
				t.Errorf("Expected event to be deleted, but got deleted count: %d", deleted)
			}
			if !tt.shouldDelete && deleted != 0 {
				t.Errorf("Expected event to remain, but got deleted count: %d", deleted)
			}
		})
	}
}

// TestPruner_PruneByCount tests count-based pruning.
func TestPruner_PruneByCount(t *testing.T) {
	tests := []struct {
		name           string
		maxRecords     int64
		existingCount  int
		expectedDelete int64
	}{
		{
			name:           "within limit - no deletion",
			maxRecords:     100,
			existingCount:  50,
			expectedDelete: 0,
		},
		{
			name:           "at limit - no deletion",
			maxRecords:     100,
			existingCount:  100,
			expectedDelete: 0,
		},
		{
			name:           "exceeds by 1 - delete oldest",
			maxRecords:     100,
			existingCount:  101,
			expectedDelete: 1,
		},
		{
			name:           "exceeds by many - delete oldest batch",
			maxRecords:     100,
			existingCount:  150,
			expectedDelete: 50,
		},
		{
			name:           "unlimited - no deletion",
			maxRecords:     0,
			existingCount:  200,
			expectedDelete: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			config := DefaultConfig()
			config.RetentionDays = 0 // Disable age-based pruning
			config.MaxRecords = tt.maxRecords
			config.ArchiveBeforeDelete = false

			pruner := NewPruner(store, config)

			ctx := context.Background()
			now := time.Now()

			// Insert events with incrementing timestamps
			for i := 0; i < tt.existingCount; i++ {
				event := eventAt(fmt.Sprintf("test-%d", i), now.Add(time.Duration(i)*time.Second))
				if err := store.Store(ctx, event); err != nil {
					t.Fatalf("failed to store event: %v", err)
				}
			}

			deleted, err := pruner.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}

			if deleted != tt.expectedDelete {
				t.Errorf("deleted = %d, want %d", deleted, tt.expectedDelete)
			}

			remaining, err := store.Count(ctx, &audit.Query{})
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}

			expectedRemaining := int64(tt.existingCount) - tt.expectedDelete
			if tt.maxRecords > 0 && remaining > tt.maxRecords {
				t.Errorf("remaining count %d exceeds max %d", remaining, tt.maxRecords)
			}
			if remaining != expectedRemaining {
				t.Errorf("remaining = %d, want %d", remaining, expectedRemaining)
			}
		})
	}
}

// TestPruner_BothAgeAndCount tests age-based and count-based pruning together.
func TestPruner_BothAgeAndCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 90
	config.MaxRecords = 80
	config.ArchiveBeforeDelete = false

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	// 50 events past retention, deleted by age
	for i := 0; i < 50; i++ {
		event := eventAt(fmt.Sprintf("old-%d", i), now.AddDate(0, 0, -100))
		if err := store.Store(ctx, event); err != nil {
			t.Fatalf("failed to store event: %v", err)
		}
	}

	// 100 recent events, 20 deleted by count limit
	for i := 0; i < 100; i++ {
		event := eventAt(fmt.Sprintf("recent-%d", i), now.Add(time.Duration(i)*time.Second))
		if err := store.Store(ctx, event); err != nil {
			t.Fatalf("failed to store event: %v", err)
		}
	}

	initialCount, _ := store.Count(ctx, &audit.Query{})
	if initialCount != 150 {
		t.Fatalf("Expected 150 initial events, got %d", initialCount)
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	// 50 by age plus 20 by count
	if deleted != 70 {
		t.Errorf("deleted = %d, want 70", deleted)
	}

	remaining, _ := store.Count(ctx, &audit.Query{})
	if remaining != 80 {
		t.Errorf("remaining = %d, want 80", remaining)
	}

	allEvents, _ := store.Query(ctx, &audit.Query{Limit: 200})
	for _, r := range allEvents {
		age := now.Sub(r.StartedAt).Hours() / 24
		if age > 90 {
			t.Errorf("Event %s is %.0f days old, should have been deleted", r.ID, age)
		}
	}
}

// TestPruner_ArchiveDirectoryCreation tests that the archive directory is created if missing.
func TestPruner_ArchiveDirectoryCreation(t *testing.T) {
	store := storage.NewMemoryStorage()

	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "nested", "archives")

	config := DefaultConfig()
	config.RetentionDays = 7
	config.ArchiveBeforeDelete = true
	config.ArchivePath = archivePath

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	_ = store.Store(ctx, eventAt("old-event", now.AddDate(0, 0, -10)))

	if _, err := pruner.Prune(ctx); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		t.Error("Archive directory was not created")
	}
}

// TestPruner_NoArchiveWhenNoEvents tests that no archive is created when nothing matches.
func TestPruner_NoArchiveWhenNoEvents(t *testing.T) {
	store := storage.NewMemoryStorage()

	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.RetentionDays = 7
	config.ArchiveBeforeDelete = true
	config.ArchivePath = tmpDir

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	_ = store.Store(ctx, eventAt("recent-event", now.AddDate(0, 0, -1)))

	if _, err := pruner.Prune(ctx); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(tmpDir, "exports-*.json"))
	if len(files) != 0 {
		t.Errorf("Expected no archive files, got %d", len(files))
	}
}
