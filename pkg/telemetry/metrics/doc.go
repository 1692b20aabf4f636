// Package metrics provides Prometheus metrics collection for LedgerPort.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring the
// export pipeline, QuickBooks Online API usage, and the OAuth token
// lifecycle. A single Collector owns every metric and the registry they
// live in, so the HTTP layer can expose one scrape endpoint.
//
// # Metrics Categories
//
//   - Export Metrics: Export count, duration, output size, and records written
//   - QBO Metrics: Page request count, round-trip time, and pages per fetch
//   - Token Metrics: Refresh attempts by outcome
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(cfg, nil)
//
//	// Record a completed export
//	collector.RecordExport(
//		"csv",            // format
//		"success",        // status
//		4200*time.Millisecond,
//		250_000,          // bytes
//		1500,             // records
//	)
//
//	// Record QuickBooks API activity
//	collector.RecordPageRequest("success", 300*time.Millisecond)
//	collector.RecordFetch(3)
//
//	// Record a token refresh
//	collector.RecordTokenRefresh("success")
//
// # Label Discipline
//
// Every label is drawn from a closed vocabulary. Formats outside the
// supported set are collapsed to "invalid" before they reach a metric,
// so client-supplied strings can never grow the label space. Realm IDs
// are deliberately not labels: one deployment can serve many realms and
// per-realm series would grow without bound.
//
// # Prometheus Endpoint
//
// All metrics are exposed via Collector.Handler in the standard
// exposition format, OpenMetrics negotiation included:
//
//	# HELP brightbooks_ledgerport_exports_total Total number of export requests by format and status
//	# TYPE brightbooks_ledgerport_exports_total counter
//	brightbooks_ledgerport_exports_total{format="csv",status="success"} 42
package metrics
