package metrics

import (
	"time"

	"brightbooks-hq/ledgerport/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric the service exposes. It manages
// registration against a single registry and provides typed Record
// methods so call sites never touch label plumbing directly.
//
// All Record methods are safe for concurrent use and become no-ops when
// metrics are disabled in the configuration.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Export pipeline metrics
	exportMetrics *ExportMetrics

	// QuickBooks API metrics
	qboMetrics *QBOMetrics

	// OAuth token lifecycle metrics
	tokenMetrics *TokenMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "brightbooks",
//		Subsystem: "ledgerport",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "brightbooks"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "ledgerport"
	}
	if len(cfg.ExportDurationBuckets) == 0 {
		// A full-year fetch plus rendering spans anywhere from well under
		// a second (cached single page) to minutes (large realms).
		cfg.ExportDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.exportMetrics = NewExportMetrics(cfg, registry)
	c.qboMetrics = NewQBOMetrics(cfg, registry)
	c.tokenMetrics = NewTokenMetrics(cfg, registry)

	return c
}

// RecordExport records metrics for one completed export request.
//
// Parameters:
//   - format: Output format ("csv", "json"); anything else is recorded
//     as "invalid" so request input never mints new label values
//   - status: Outcome ("success" or an error code such as "query_failed")
//   - duration: Wall time for the whole export, fetch included
//   - sizeBytes: Rendered output size, zero when the export failed
//   - records: Number of records rendered, zero when the export failed
func (c *Collector) RecordExport(format, status string, duration time.Duration, sizeBytes, records int) {
	if !c.config.Enabled {
		return
	}

	c.exportMetrics.RecordExport(normalizeFormat(format), status, duration, sizeBytes, records)
}

// RecordPageRequest records one QuickBooks query page request.
//
// Parameters:
//   - status: Outcome label ("success", "auth_error", "rate_limited",
//     "server_error", "client_error", "network")
//   - duration: Round-trip time of the page request
func (c *Collector) RecordPageRequest(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.qboMetrics.RecordPageRequest(status, duration)
}

// RecordFetch records how many pages a completed fetch needed.
//
// Parameters:
//   - pages: Page requests issued by the fetch loop
func (c *Collector) RecordFetch(pages int) {
	if !c.config.Enabled {
		return
	}

	c.qboMetrics.RecordFetch(pages)
}

// RecordTokenRefresh records one OAuth token refresh attempt.
//
// Parameters:
//   - outcome: "success", "reconnect" (grant permanently dead), or
//     "error" (transient failure)
func (c *Collector) RecordTokenRefresh(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.tokenMetrics.RecordRefresh(outcome)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether metrics collection is turned on.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Path returns the configured HTTP path of the metrics endpoint.
func (c *Collector) Path() string {
	if c.config.Path == "" {
		return "/metrics"
	}
	return c.config.Path
}

// normalizeFormat collapses unrecognized format strings to "invalid".
// The format label must stay a closed set even though handlers record
// rejected requests with whatever string the client sent.
func normalizeFormat(format string) string {
	switch format {
	case "csv", "json":
		return format
	default:
		return "invalid"
	}
}
