package metrics

import (
	"time"

	"brightbooks-hq/ledgerport/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// QBOMetrics tracks QuickBooks Online API usage.
//
// Metrics:
//   - brightbooks_ledgerport_qbo_page_requests_total: Page request count by status
//   - brightbooks_ledgerport_qbo_page_request_duration_seconds: Page round-trip time
//   - brightbooks_ledgerport_qbo_pages_per_fetch: Pages needed per completed fetch
type QBOMetrics struct {
	// Page request counter
	pageRequestsTotal *prometheus.CounterVec

	// Page request round-trip histogram
	pageRequestDuration *prometheus.HistogramVec

	// Pages per completed fetch
	pagesPerFetch prometheus.Histogram
}

// NewQBOMetrics creates and registers QuickBooks API metrics with the provided registry.
func NewQBOMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *QBOMetrics {
	qm := &QBOMetrics{
		pageRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "qbo_page_requests_total",
				Help:      "Total number of QuickBooks query page requests by status",
			},
			[]string{"status"},
		),

		pageRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "qbo_page_request_duration_seconds",
				Help:      "Round-trip time of QuickBooks query page requests in seconds",
				// Single HTTP calls, not whole fetches. QBO answers most
				// query pages inside a second but can stall near the 60s
				// client timeout under load.
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		),

		pagesPerFetch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "qbo_pages_per_fetch",
				Help:      "Number of page requests issued by a completed fetch",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512 pages
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		qm.pageRequestsTotal,
		qm.pageRequestDuration,
		qm.pagesPerFetch,
	)

	return qm
}

// RecordPageRequest records one page request with its outcome and
// round-trip time.
func (qm *QBOMetrics) RecordPageRequest(status string, duration time.Duration) {
	qm.pageRequestsTotal.WithLabelValues(status).Inc()
	qm.pageRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordFetch records how many pages a completed fetch needed. Aborted
// fetches are not observed; their failed page already appears in the
// page request counter.
func (qm *QBOMetrics) RecordFetch(pages int) {
	if pages > 0 {
		qm.pagesPerFetch.Observe(float64(pages))
	}
}
