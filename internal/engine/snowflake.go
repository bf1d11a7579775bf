package engine

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewSnowflakeEngine opens a Snowflake connection via
// snowflakedb/gosnowflake.
func NewSnowflakeEngine(cfg Config) (Engine, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s&role=%s",
		cfg.User, cfg.Password, cfg.Account, cfg.Database, cfg.Schema, cfg.Warehouse, cfg.Role)

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening snowflake connection to account %q failed", cfg.Account)
	}
	return &sqlEngine{
		name:        "snowflake",
		db:          db,
		introspect:  snowflakeIntrospect,
		tableExists: snowflakeTableExists,
	}, nil
}

func snowflakeIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on snowflake failed", schema, table)
	}
	defer rows.Close()
	return scanIntrospectedColumns(rows, "YES")
}

func snowflakeTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, schema, table)
}
