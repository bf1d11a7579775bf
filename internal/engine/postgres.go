package engine

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewPostgresEngine opens a Postgres connection via lib/pq.
func NewPostgresEngine(cfg Config) (Engine, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=require",
		cfg.Host, port, cfg.Database, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening postgres connection to %s failed", cfg.Host)
	}
	return &sqlEngine{
		name:        "postgres",
		db:          db,
		introspect:  postgresIntrospect,
		tableExists: postgresTableExists,
	}, nil
}

func postgresIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on postgres failed", schema, table)
	}
	defer rows.Close()
	return scanIntrospectedColumns(rows, "YES")
}

func postgresTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2`, schema, table)
}
