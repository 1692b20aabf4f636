package storage

import (
	"context"
	"sort"
	"sync"

	"brightbooks-hq/ledgerport/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Events do not survive a restart, so it suits tests and one-shot CLI
// runs where no trail is expected afterward.
type MemoryStorage struct {
	events map[string]*audit.ExportEvent
	mu     sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events: make(map[string]*audit.ExportEvent),
	}
}

// Store persists an export event to memory.
func (s *MemoryStorage) Store(ctx context.Context, event *audit.ExportEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	eventCopy := *event
	s.events[event.ID] = &eventCopy

	return nil
}

// Query retrieves export events matching the query filters,
// ordered by start time descending.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.ExportEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.ExportEvent
	for _, event := range s.events {
		if matchesQuery(event, query) {
			eventCopy := *event
			results = append(results, &eventCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	// Apply pagination
	start := query.Offset
	if start > len(results) {
		return []*audit.ExportEvent{}, nil
	}

	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// Count returns the number of export events matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, event := range s.events {
		if matchesQuery(event, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes export events matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	toDelete := []string{}
	for id, event := range s.events {
		if matchesQuery(event, query) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.events, id)
		deleted++
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]*audit.ExportEvent)
	return nil
}

// matchesQuery checks if an event matches the query filters.
func matchesQuery(event *audit.ExportEvent, query *audit.Query) bool {
	// Time range filter
	if query.StartTime != nil && event.StartedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && event.StartedAt.After(*query.EndTime) {
		return false
	}

	// Realm/year filter
	if query.RealmID != "" && event.RealmID != query.RealmID {
		return false
	}
	if query.Year > 0 && event.Year != query.Year {
		return false
	}

	// Report/format filter
	if query.Report != "" && event.Report != query.Report {
		return false
	}
	if query.Format != "" && event.Format != query.Format {
		return false
	}

	// Outcome filter
	if query.Status != "" && event.Status != query.Status {
		return false
	}

	return true
}

// Clear removes all events from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]*audit.ExportEvent)
}

// GetByID retrieves a single export event by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *audit.ExportEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil
	}

	eventCopy := *event
	return &eventCopy
}

// Size returns the number of events in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}
