package engine

import (
	"context"
	"database/sql"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// NewMySQLEngine opens a connection to an operational MySQL source system
// via go-sql-driver/mysql. MySQL is not a target dialect (spec.md section 1
// names only the warehouse dialects); this constructor exists purely so the
// RAW-layer relational ingestion path (internal/ingest.RelationalConnector)
// can read out of MySQL source systems, the platform's most common
// operational source per SPEC_FULL.md section 4.7.
func NewMySQLEngine(cfg Config) (Engine, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mysqlCfg := mysqldriver.NewConfig()
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mysqlCfg.User = cfg.User
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.DBName = cfg.Database
	mysqlCfg.ParseTime = true

	return openMySQLFromDSN(mysqlCfg.FormatDSN())
}

// OpenMySQLFromDSN opens a MySQL connection from a raw go-sql-driver DSN,
// used when internal/ingest dials a source system named only by
// SourceDataset.ConnectorDSN rather than a full engine.Config.
func OpenMySQLFromDSN(dsn string) (Engine, error) {
	return openMySQLFromDSN(dsn)
}

func openMySQLFromDSN(dsn string) (Engine, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindIngest, err, "opening mysql connection failed")
	}
	return &sqlEngine{
		name:        "mysql",
		db:          db,
		introspect:  mysqlIntrospect,
		tableExists: mysqlTableExists,
	}, nil
}

func mysqlIntrospect(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s.%s on mysql failed", schema, table)
	}
	defer rows.Close()
	return scanIntrospectedColumns(rows, "YES")
}

func mysqlTableExists(ctx context.Context, db *sql.DB, schema, table string) (bool, error) {
	return genericTableExists(ctx, db, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`, schema, table)
}
