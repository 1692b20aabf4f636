package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"brightbooks-hq/ledgerport/pkg/audit"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout is the timeout for writing events to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records export events asynchronously so report requests
// never block on audit storage writes.
type Recorder struct {
	storage   audit.Storage
	config    *Config
	eventChan chan *audit.ExportEvent
	wg        sync.WaitGroup
	done      chan struct{}
	logger    *slog.Logger
}

// NewRecorder creates a new audit recorder with the provided storage backend
// and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:   storage,
		config:    config,
		eventChan: make(chan *audit.ExportEvent, config.AsyncBuffer),
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "audit.recorder"),
	}

	// Start background worker to drain channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a completed export event for async writing to storage.
//
// This method returns immediately and does not block on storage writes.
func (r *Recorder) Record(ctx context.Context, event *audit.ExportEvent) error {
	if !r.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	select {
	case r.eventChan <- event:
		r.logger.Debug("export event enqueued for writing",
			"event_id", event.ID,
			"request_id", event.RequestID,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("audit event channel full, dropping event",
			"event_id", event.ID,
			"request_id", event.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(event.ID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping event",
			"event_id", event.ID,
			"request_id", event.RequestID,
		)
		return audit.NewRecorderError(event.ID, context.Canceled)
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")

	// Signal shutdown
	close(r.done)

	// Wait for worker to finish draining channel
	r.wg.Wait()

	r.logger.Info("audit recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the event channel and
// writes events to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.eventChan:
			r.writeEvent(event)

		case <-r.done:
			// Drain remaining events from channel before exit
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.eventChan),
			)

			for {
				select {
				case event := <-r.eventChan:
					r.writeEvent(event)
				default:
					// Channel is empty, we can exit
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

// writeEvent writes a single export event to storage.
func (r *Recorder) writeEvent(event *audit.ExportEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	err := r.storage.Store(ctx, event)
	if err != nil {
		r.logger.Error("failed to store export event",
			"event_id", event.ID,
			"request_id", event.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Info("export recorded",
		"event_id", event.ID,
		"request_id", event.RequestID,
		"realm_id", event.RealmID,
		"report", event.Report,
		"status", event.Status,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"event_id", event.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
