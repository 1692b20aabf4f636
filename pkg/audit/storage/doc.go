// Package storage provides storage backends for export audit events.
//
// # Storage Backends
//
// The storage package implements the audit.Storage interface twice:
//
//   - SQLite: Embedded database for single-node deployments
//   - Memory: In-memory storage for testing and one-shot CLI runs
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads/writes
//   - Indexes on started_at, realm_id, status, and year
//   - Busy timeout for handling locks
//   - Schema version tracking in the schema_version table
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:        "data/audit.db",
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Store(ctx, event)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	query := &audit.Query{
//	    RealmID: "9341453774295041",
//	    Year:    2024,
//	    Limit:   100,
//	}
//	events, err := store.Query(ctx, query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Both backends are safe for concurrent use. Store can be called
// concurrently with Query, and WAL mode keeps readers from blocking
// the writer.
package storage
