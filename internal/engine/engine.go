// Package engine implements the Execution Orchestrator's per-target-system
// connection: opening a database/sql handle with the right driver, running
// DDL/DML statements, fetching rows for introspection, and exposing a
// single scalar-query helper.
//
// Grounded on sqldef's database/{postgres,mssql,...}/database.go shape (one
// struct per dialect wrapping *sql.DB, opened via a dialect-specific DSN
// builder) generalized to spec.md section 5's Engine contract
// (Execute/ExecuteMany/FetchAll/ExecuteScalar/Close) instead of sqldef's
// Database interface (DumpDDLs/RunDDLs/Close), since this system diffs
// introspected columns rather than dumping/parsing full DDL text.
package engine

import (
	"context"
	"database/sql"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// Row is a single introspection result row keyed by column name, mirroring
// the shape FetchAll returns so callers never deal with *sql.Rows directly.
type Row map[string]any

// Engine is the polymorphic per-target-system connection contract. Each
// dialect constructor (NewDuckDBEngine, NewPostgresEngine, ...) returns an
// Engine wrapping a database/sql driver registered under that dialect's
// import, except NewBigQueryEngine, which wraps the native BigQuery client.
type Engine interface {
	Name() string

	// Execute runs a single statement with no result rows expected (DDL, a
	// single-row DML statement).
	Execute(ctx context.Context, statement string, args ...any) error

	// ExecuteMany runs a script of statements sequentially, stopping at the
	// first error. The database/sql engines run it inside one transaction
	// and roll back entirely on that error (sqldef's RunDDLs idiom); the
	// BigQuery engine runs each statement as its own job with no rollback.
	ExecuteMany(ctx context.Context, statements []string) error

	// FetchAll runs a query and returns every row as a column-name-keyed map.
	FetchAll(ctx context.Context, query string, args ...any) ([]Row, error)

	// ExecuteScalar runs a query expected to return exactly one row/column
	// and returns that single value.
	ExecuteScalar(ctx context.Context, query string, args ...any) (any, error)

	// IntrospectColumns returns the live physical columns of schema.table,
	// consumed by the Materialization Planner's diff per spec section 4.8.
	IntrospectColumns(ctx context.Context, schema, table string) ([]IntrospectedColumn, error)

	// TableExists reports whether schema.table exists in the target system.
	TableExists(ctx context.Context, schema, table string) (bool, error)

	Close() error
}

// IntrospectedColumn is one physical column as reported by the target
// system's information schema / catalog, prior to canonicalization by
// internal/types.
type IntrospectedColumn struct {
	Name      string
	RawType   string
	Nullable  bool
	Length    *int
	Precision *int
	Scale     *int
}

// sqlEngine is the shared database/sql-backed implementation every concrete
// dialect constructor returns, parameterized by a small introspectFn that
// differs per target system's catalog tables.
type sqlEngine struct {
	name        string
	db          *sql.DB
	introspect  func(ctx context.Context, db *sql.DB, schema, table string) ([]IntrospectedColumn, error)
	tableExists func(ctx context.Context, db *sql.DB, schema, table string) (bool, error)
}

func (e *sqlEngine) Name() string { return e.name }

func (e *sqlEngine) Execute(ctx context.Context, statement string, args ...any) error {
	if _, err := e.db.ExecContext(ctx, statement, args...); err != nil {
		return elvterr.Wrap(elvterr.KindExecution, err, "execute against %s failed", e.name)
	}
	return nil
}

func (e *sqlEngine) ExecuteMany(ctx context.Context, statements []string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return elvterr.Wrap(elvterr.KindExecution, err, "begin transaction on %s failed", e.name)
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return elvterr.Wrap(elvterr.KindExecution, err, "statement failed on %s, rolled back batch", e.name)
		}
	}
	if err := tx.Commit(); err != nil {
		return elvterr.Wrap(elvterr.KindExecution, err, "commit failed on %s", e.name)
	}
	return nil
}

func (e *sqlEngine) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "query failed on %s", e.name)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "reading columns failed on %s", e.name)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, elvterr.Wrap(elvterr.KindExecution, err, "scanning row failed on %s", e.name)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (e *sqlEngine) ExecuteScalar(ctx context.Context, query string, args ...any) (any, error) {
	var v any
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "scalar query failed on %s", e.name)
	}
	return v, nil
}

func (e *sqlEngine) IntrospectColumns(ctx context.Context, schema, table string) ([]IntrospectedColumn, error) {
	return e.introspect(ctx, e.db, schema, table)
}

func (e *sqlEngine) TableExists(ctx context.Context, schema, table string) (bool, error) {
	return e.tableExists(ctx, e.db, schema, table)
}

func (e *sqlEngine) Close() error { return e.db.Close() }
