// Package recorder provides asynchronous recording of export audit events.
//
// # Recording Flow
//
// Events are recorded asynchronously to avoid blocking report handlers:
//
//  1. Handler builds an audit.ExportEvent and marks it completed or failed
//  2. Record enqueues the event to a buffered channel (non-blocking)
//  3. Background goroutine drains the channel and writes to storage
//  4. Graceful shutdown drains the channel before exit
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled:      true,
//	    AsyncBuffer:  256,
//	    WriteTimeout: 5 * time.Second,
//	})
//	defer rec.Close()
//
//	event := audit.NewEvent(requestID, realmID, 2024, "invoices", "csv")
//	event.Complete(420, 5, 183200)
//	rec.Record(ctx, event)
//
// # Thread Safety
//
// Record can be called concurrently. The background goroutine is the only
// writer to storage.
package recorder
