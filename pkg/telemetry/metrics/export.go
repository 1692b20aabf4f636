package metrics

import (
	"time"

	"brightbooks-hq/ledgerport/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks the export pipeline from request to rendered file.
//
// Metrics:
//   - brightbooks_ledgerport_exports_total: Export count by format and status
//   - brightbooks_ledgerport_export_duration_seconds: End-to-end export duration
//   - brightbooks_ledgerport_export_size_bytes: Rendered output size
//   - brightbooks_ledgerport_export_records_total: Records written per format
type ExportMetrics struct {
	// Total export count
	exportsTotal *prometheus.CounterVec

	// End-to-end export duration histogram (fetch + render)
	exportDuration *prometheus.HistogramVec

	// Rendered output size in bytes
	sizeBytes *prometheus.HistogramVec

	// Total records written
	recordsTotal *prometheus.CounterVec
}

// NewExportMetrics creates and registers export metrics with the provided registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exports_total",
				Help:      "Total number of export requests by format and status",
			},
			[]string{"format", "status"},
		),

		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_duration_seconds",
				Help:      "End-to-end export duration in seconds, fetch included",
				Buckets:   cfg.ExportDurationBuckets,
			},
			[]string{"format"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_size_bytes",
				Help:      "Size of the rendered export in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
			},
			[]string{"format"},
		),

		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_records_total",
				Help:      "Total number of records written to exports",
			},
			[]string{"format"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		em.exportsTotal,
		em.exportDuration,
		em.sizeBytes,
		em.recordsTotal,
	)

	return em
}

// RecordExport records one completed export request.
//
// The counter is incremented for every outcome. Duration, size, and
// record counts are only observed for successful exports, so failed
// requests never skew the distributions.
func (em *ExportMetrics) RecordExport(format, status string, duration time.Duration, sizeBytes, records int) {
	em.exportsTotal.WithLabelValues(format, status).Inc()

	if status != "success" {
		return
	}

	em.exportDuration.WithLabelValues(format).Observe(duration.Seconds())

	if sizeBytes > 0 {
		em.sizeBytes.WithLabelValues(format).Observe(float64(sizeBytes))
	}
	if records > 0 {
		em.recordsTotal.WithLabelValues(format).Add(float64(records))
	}
}
