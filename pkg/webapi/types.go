package webapi

import (
	"context"
	"time"

	"brightbooks-hq/ledgerport/pkg/audit"
)

// ExportRecorder receives one audit event per export attempt.
// *recorder.Recorder implements it; a nil recorder disables auditing.
type ExportRecorder interface {
	Record(ctx context.Context, event *audit.ExportEvent) error
}

// MetricsRecorder counts export outcomes. *metrics.Collector implements
// it; a nil recorder disables counting.
type MetricsRecorder interface {
	RecordExport(format, status string, duration time.Duration, sizeBytes, records int)
}
