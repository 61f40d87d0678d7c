package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the target tables when they do not already exist.
// Column types follow Postgres conventions; the sources store the same data
// with SQLite's loose typing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		location      TEXT NOT NULL,
		contact_email TEXT,
		contact_phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id),
		name        TEXT NOT NULL,
		capacity    INTEGER NOT NULL DEFAULT 0,
		dimensions  TEXT,
		built_in_av TEXT,
		features    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id                 TEXT PRIMARY KEY,
		property_id        TEXT NOT NULL REFERENCES properties(id),
		name               TEXT NOT NULL,
		model              TEXT,
		description        TEXT,
		category           TEXT,
		sub_category       TEXT,
		quantity_available INTEGER NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'available'
	)`,
	`CREATE TABLE IF NOT EXISTS labor_rules (
		id          TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id),
		rule_type   TEXT NOT NULL,
		parameters  JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_property ON rooms(property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_property_status ON inventory_items(property_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_labor_rules_property ON labor_rules(property_id)`,
}

// EnsureSchema creates the target tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
