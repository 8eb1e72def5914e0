// Package store persists user patterns in a SQLite database.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS patterns (
    name TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    alive INTEGER NOT NULL,
    rle TEXT NOT NULL,        -- run-length encoded cells
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patterns_updated ON patterns(updated_at);
`

// InitSchema creates the tables if needed and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "[InitSchema] failed to read schema version")
	}
	if version > SchemaVersion {
		return errors.Errorf("[InitSchema] database schema version %d is newer than supported %d", version, SchemaVersion)
	}
	if version == SchemaVersion {
		return nil
	}

	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return errors.Wrap(err, "[InitSchema] failed to create schema")
	}
	// PRAGMA does not accept bind parameters
	if _, err := db.ExecContext(ctx, "PRAGMA user_version = 1"); err != nil {
		return errors.Wrap(err, "[InitSchema] failed to record schema version")
	}
	return nil
}
