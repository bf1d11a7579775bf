package engine

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewMSSQLEngine opens a SQL Server connection via denisenkom/go-mssqldb.
// Fabric Warehouse speaks the same T-SQL wire protocol and catalog views, so
// NewFabricEngine below reuses this constructor with a different name.
func NewMSSQLEngine(cfg Config) (Engine, error) {
	return newMssqlFamilyEngine(cfg, "mssql")
}

// NewFabricEngine opens a Microsoft Fabric Warehouse connection. Fabric is
// accessed through the same sqlserver:// DSN and driver as on-prem SQL
// Server; only the dialect layer's capability flags differ (see
// internal/dialect's NewFabric, which disables MERGE/ALTER COLUMN TYPE).
func NewFabricEngine(cfg Config) (Engine, error) {
	return newMssqlFamilyEngine(cfg, "fabric")
}

func newMssqlFamilyEngine(cfg Config, name string) (Engine, error) {
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database)

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening %s connection to %s failed", name, cfg.Host)
	}
	return &sqlEngine{
		name:        name,
		db:          db,
		introspect:  mssqlIntrospect,
		tableExists: mssqlTableExists,
	}, nil
}

func mssqlIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = @p1 AND table_name = @p2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on mssql failed", schema, table)
	}
	defer rows.Close()
	return scanIntrospectedColumns(rows, "YES")
}

func mssqlTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = @p1 AND table_name = @p2`, schema, table)
}
