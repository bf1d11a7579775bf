package engine

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewDatabricksEngine opens a Databricks SQL Warehouse connection via
// databricks/databricks-sql-go, which does implement a standard
// database/sql driver (registered as "databricks"), unlike BigQuery.
func NewDatabricksEngine(cfg Config) (Engine, error) {
	port := cfg.Port
	if port == 0 {
		port = 443
	}
	dsn := fmt.Sprintf("token:%s@%s:%d%s", cfg.AccessToken, cfg.Host, port, cfg.HTTPPath)

	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening databricks connection to %s failed", cfg.Host)
	}
	return &sqlEngine{
		name:        "databricks",
		db:          db,
		introspect:  databricksIntrospect,
		tableExists: databricksTableExists,
	}, nil
}

func databricksIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("DESCRIBE TABLE %s.%s", schema, table))
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on databricks failed", schema, table)
	}
	defer rows.Close()

	var out []IntrospectedColumn
	for rows.Next() {
		var name, dataType, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &comment); err != nil {
			return nil, elvterr.Wrap(elvterr.KindExecution, err, "scanning DESCRIBE TABLE row failed")
		}
		if name.String == "" || name.String[0] == '#' {
			continue // DESCRIBE TABLE trails off into partition/detail sections prefixed with '#'
		}
		out = append(out, IntrospectedColumn{Name: name.String, RawType: dataType.String, Nullable: true})
	}
	return out, rows.Err()
}

func databricksTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, schema, table)
}
