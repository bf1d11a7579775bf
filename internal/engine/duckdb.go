package engine

import (
	"context"
	"database/sql"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewDuckDBEngine opens a DuckDB file (or :memory: when Config.Path is
// empty) as an Engine.
func NewDuckDBEngine(cfg Config) (Engine, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening duckdb at %q failed", path)
	}
	return &sqlEngine{
		name:        "duckdb",
		db:          db,
		introspect:  duckdbIntrospect,
		tableExists: duckdbTableExists,
	}, nil
}

func duckdbIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on duckdb failed", schema, table)
	}
	defer rows.Close()
	return scanIntrospectedColumns(rows, "YES")
}

func duckdbTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, schema, table)
}
