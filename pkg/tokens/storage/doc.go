// Package storage provides persistence backends for OAuth token sets.
//
// # Overview
//
// The storage package defines the interface for persisting the
// access/refresh token pair of each connected QuickBooks realm and
// provides two implementations:
//
//   - Memory: in-memory storage for tests and one-shot runs
//   - SQLite: file-based persistence so connections survive restarts
//
// # Usage
//
//	backend, err := storage.NewSQLiteBackend("/var/lib/ledgerport/tokens.db")
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//
//	token, err := backend.Load(ctx, "9341453774295041")
//	if token == nil {
//	    // realm has never connected
//	}
//
// # Thread Safety
//
// All storage backends are thread-safe and support concurrent access
// from multiple goroutines. Locking is handled internally by each backend.
package storage
