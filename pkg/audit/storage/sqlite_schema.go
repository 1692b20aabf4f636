package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Export events table
CREATE TABLE IF NOT EXISTS export_events (
    id TEXT PRIMARY KEY,
    request_id TEXT,

    -- What was exported
    realm_id TEXT NOT NULL,
    year INTEGER NOT NULL,
    report TEXT NOT NULL,
    format TEXT NOT NULL,

    -- Outcome
    status TEXT NOT NULL,
    record_count INTEGER,
    pages INTEGER,
    bytes INTEGER,
    error TEXT,

    -- Timing
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    duration_ms INTEGER
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_export_events_started_at ON export_events(started_at);
CREATE INDEX IF NOT EXISTS idx_export_events_realm_id ON export_events(realm_id);
CREATE INDEX IF NOT EXISTS idx_export_events_status ON export_events(status);
CREATE INDEX IF NOT EXISTS idx_export_events_year ON export_events(year);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
