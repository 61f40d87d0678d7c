// Package migrate copies property data from a SQLite database into Postgres.
// It is used once per property onboarding and is safe to re-run: rows that
// already exist in the target are skipped.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/pkg/logger"
)

// table describes one migratable table: its name and column list, in the
// order shared by both the source and target schemas. The first column is
// always the primary key used for conflict detection.
type table struct {
	name    string
	columns []string
}

// Tables lists the migratable tables in dependency order. Properties must
// land before the rows that reference them.
var Tables = []string{"properties", "rooms", "inventory_items", "labor_rules"}

var tableDefs = map[string]table{
	"properties": {
		name:    "properties",
		columns: []string{"id", "name", "location", "contact_email", "contact_phone"},
	},
	"rooms": {
		name:    "rooms",
		columns: []string{"id", "property_id", "name", "capacity", "dimensions", "built_in_av", "features"},
	},
	"inventory_items": {
		name:    "inventory_items",
		columns: []string{"id", "property_id", "name", "model", "description", "category", "sub_category", "quantity_available", "status"},
	},
	"labor_rules": {
		name:    "labor_rules",
		columns: []string{"id", "property_id", "rule_type", "parameters"},
	},
}

// Result reports the outcome of migrating one table.
type Result struct {
	Table   string
	Copied  int
	Skipped int
}

// Migrator copies rows from a SQLite source to a Postgres target.
type Migrator struct {
	source *sql.DB
	target *sql.DB
	logger *logger.Logger
}

// New creates a migrator over the given source and target connections.
func New(source, target *sql.DB, log *logger.Logger) *Migrator {
	return &Migrator{
		source: source,
		target: target,
		logger: log,
	}
}

// Run migrates the named tables in order. An unknown table name fails before
// any data moves.
func (m *Migrator) Run(ctx context.Context, tables []string) ([]Result, error) {
	for _, name := range tables {
		if _, ok := tableDefs[name]; !ok {
			return nil, fmt.Errorf("unknown table: %s", name)
		}
	}

	var results []Result
	for _, name := range tables {
		res, err := m.migrateTable(ctx, tableDefs[name])
		if err != nil {
			return results, fmt.Errorf("failed to migrate %s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// migrateTable copies every row of one table. Rows whose primary key already
// exists in the target count as skipped.
func (m *Migrator) migrateTable(ctx context.Context, t table) (Result, error) {
	res := Result{Table: t.name}

	selectQuery := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
	rows, err := m.source.QueryContext(ctx, selectQuery)
	if err != nil {
		return res, fmt.Errorf("failed to read source rows: %w", err)
	}
	defer rows.Close()

	insertQuery := insertStatement(t)

	for rows.Next() {
		values := make([]any, len(t.columns))
		scanTargets := make([]any, len(t.columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return res, fmt.Errorf("failed to scan source row: %w", err)
		}

		result, err := m.target.ExecContext(ctx, insertQuery, values...)
		if err != nil {
			return res, fmt.Errorf("failed to insert row: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return res, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected > 0 {
			res.Copied++
		} else {
			res.Skipped++
		}
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("failed to iterate source rows: %w", err)
	}

	m.logger.Info("migrated table",
		zap.String("table", t.name),
		zap.Int("copied", res.Copied),
		zap.Int("skipped", res.Skipped),
	)

	return res, nil
}

// insertStatement builds the parameterized insert for one table. Conflicts
// on the primary key leave the existing target row untouched.
func insertStatement(t table) string {
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
		t.name,
		strings.Join(t.columns, ", "),
		strings.Join(placeholders, ", "),
	)
}
