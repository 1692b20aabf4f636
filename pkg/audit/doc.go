// Package audit keeps a durable trail of every export that ran.
//
// # Overview
//
// Each HTTP or CLI export produces one ExportEvent describing what was
// asked for (realm, year, report, format), how it went (status, record
// and page counts, payload size, error), and when. Events answer the
// questions that come up after the fact: which realms are exporting,
// how large the pulls are, and which exports failed and why.
//
// The package splits into:
//
//   - audit: ExportEvent, Query, the Storage interface, and error types
//   - audit/storage: SQLite and in-memory Storage implementations
//   - audit/recorder: asynchronous writer so exports never block on audit
//   - audit/retention: scheduled age- and count-based pruning
//
// # Recording
//
//	event := audit.NewEvent(requestID, realmID, year, "invoices", "csv")
//	// ... run the export ...
//	event.Complete(len(records), pages, int64(len(out.Data)))
//	recorder.Record(event)
//
// Fail replaces Complete when the export aborts. Events carry no row
// data and no tokens, only shape and outcome.
package audit
