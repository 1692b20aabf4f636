package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of an export.
type Status string

const (
	// StatusCompleted means the export produced a payload.
	StatusCompleted Status = "completed"

	// StatusFailed means the export aborted before producing a payload.
	StatusFailed Status = "failed"
)

// ExportEvent is the audit record for a single export, whether it was
// requested over HTTP or from the CLI. One event is recorded per export
// attempt, successful or not.
type ExportEvent struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // HTTP request ID, empty for CLI runs

	// What was exported
	RealmID string `json:"realm_id"` // QuickBooks company
	Year    int    `json:"year"`     // Transaction year requested
	Report  string `json:"report"`   // "invoices" or "invoice_lines_all"
	Format  string `json:"format"`   // "json" or "csv"

	// Outcome
	Status      Status `json:"status"`
	RecordCount int    `json:"record_count"` // Invoices fetched
	Pages       int    `json:"pages"`        // Query pages fetched
	Bytes       int64  `json:"bytes"`        // Size of the rendered payload
	Error       string `json:"error"`        // Failure description, empty on success

	// Timing
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

// NewEvent starts an audit event for an export that is about to run.
// The caller finishes it with Complete or Fail before recording it.
func NewEvent(requestID, realmID string, year int, report, format string) *ExportEvent {
	return &ExportEvent{
		ID:        uuid.New().String(),
		RequestID: requestID,
		RealmID:   realmID,
		Year:      year,
		Report:    report,
		Format:    format,
		StartedAt: time.Now(),
	}
}

// Complete marks the export as finished and stamps the outcome counters.
func (e *ExportEvent) Complete(recordCount, pages int, size int64) {
	e.Status = StatusCompleted
	e.RecordCount = recordCount
	e.Pages = pages
	e.Bytes = size
	e.CompletedAt = time.Now()
	e.Duration = e.CompletedAt.Sub(e.StartedAt)
}

// Fail marks the export as aborted with the given cause.
func (e *ExportEvent) Fail(err error) {
	e.Status = StatusFailed
	if err != nil {
		e.Error = err.Error()
	}
	e.CompletedAt = time.Now()
	e.Duration = e.CompletedAt.Sub(e.StartedAt)
}

// Query defines filter parameters for querying export events.
// Results are ordered newest first.
type Query struct {
	// Time range over StartedAt
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	RealmID string `json:"realm_id,omitempty"` // Filter by realm
	Year    int    `json:"year,omitempty"`     // Filter by export year
	Report  string `json:"report,omitempty"`   // Filter by report name
	Format  string `json:"format,omitempty"`   // Filter by output format
	Status  Status `json:"status,omitempty"`   // Filter by outcome

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max events to return
	Offset int `json:"offset,omitempty"` // Skip N events
}

// Storage defines the interface for export event storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists an export event.
	// Returns an error if the event cannot be written.
	Store(ctx context.Context, event *ExportEvent) error

	// Query retrieves export events matching the query filters,
	// ordered by start time descending.
	Query(ctx context.Context, query *Query) ([]*ExportEvent, error)

	// Count returns the number of export events matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes export events matching the query filters.
	// Returns the number of events deleted.
	// Used for retention policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
