package storage

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schema defines the complete database schema for the five tables the
// persistence contract names: events, factors, suppressed_factor_codes,
// pending_followups, and user_controls.
const schema = `
CREATE TABLE IF NOT EXISTS schema_metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	parent_event_id TEXT,
	intent TEXT NOT NULL,
	save_mode TEXT NOT NULL,
	raw_text TEXT
);

CREATE TABLE IF NOT EXISTS factors (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL,
	domain TEXT NOT NULL,
	type TEXT NOT NULL,
	code TEXT NOT NULL,
	value_kind TEXT NOT NULL,
	value_json TEXT NOT NULL,
	confidence REAL NOT NULL,
	time_horizon TEXT NOT NULL,
	modifiability TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_factors_code ON factors(code);
CREATE INDEX IF NOT EXISTS idx_factors_event ON factors(event_id);

CREATE TABLE IF NOT EXISTS suppressed_factor_codes (
	code TEXT PRIMARY KEY,
	suppressed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_followups (
	id TEXT PRIMARY KEY,
	parent_event_id TEXT NOT NULL,
	question_text TEXT NOT NULL,
	missing_info_key TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_controls (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// initializeSchema creates all tables and records the schema version on
// first run, matching the teacher's version-metadata-row convention.
func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'version'").Scan(&currentVersion)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_metadata (key, value) VALUES ('version', ?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query schema version: %w", err)
	case currentVersion != schemaVersion:
		return fmt.Errorf("schema version mismatch: expected %d, got %d", schemaVersion, currentVersion)
	}
	return nil
}

// configureSQLite sets pragmas favoring durability and single-writer
// concurrency, matching the engine's single-writer assumption.
func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}
