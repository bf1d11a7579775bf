package ingest

import (
	"context"
	"fmt"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// RelationalConnector reads rows out of an operational source system over
// database/sql and loads them into the RAW target table via the target
// engine's ExecuteMany, mirroring spec.md's note that the RAW layer
// routinely ingests out of operational MySQL systems even when the
// warehouse target is one of the analytical dialects (SPEC_FULL.md section
// 4.7). Source and target may be entirely different engines/dialects.
//
// Source is optional: when nil, Ingest opens a fresh MySQL connection per
// call from SourceDataset.ConnectorDSN and closes it afterward, since
// distinct relational-source datasets routinely name distinct operational
// databases rather than sharing one connection for the run's lifetime.
type RelationalConnector struct {
	Source engine.Engine
	Target engine.Engine
}

func (c RelationalConnector) Ingest(ctx context.Context, ds catalog.SourceDataset, targetSchema, targetTable string) (int64, error) {
	source := c.Source
	if source == nil {
		if ds.ConnectorDSN == "" {
			return 0, elvterr.New(elvterr.KindIngest, "relational ingest: dataset %s has no ConnectorDSN configured", ds.Key())
		}
		opened, err := engine.OpenMySQLFromDSN(ds.ConnectorDSN)
		if err != nil {
			return 0, elvterr.Wrap(elvterr.KindIngest, err, "relational ingest: opening source for %s", ds.Key())
		}
		defer opened.Close()
		source = opened
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", ds.SchemaName, ds.SourceDatasetName)
	if ds.StaticFilter != "" {
		query += " WHERE " + ds.StaticFilter
	}

	rows, err := source.FetchAll(ctx, query)
	if err != nil {
		return 0, elvterr.Wrap(elvterr.KindIngest, err, "relational ingest: reading %s", ds.Key())
	}
	if len(rows) == 0 {
		return 0, nil
	}

	statements := make([]string, 0, len(rows))
	for _, row := range rows {
		statements = append(statements, buildInsertStatement(targetSchema, targetTable, row))
	}
	if err := c.Target.ExecuteMany(ctx, statements); err != nil {
		return 0, elvterr.Wrap(elvterr.KindIngest, err, "relational ingest: writing %s.%s", targetSchema, targetTable)
	}
	return int64(len(rows)), nil
}

// buildInsertStatement renders a literal-valued INSERT for one row. This is
// intentionally the simplest possible "native" path: the raw layer has no
// type evolution concerns yet (that happens at materialization), so values
// are inlined rather than parameter-bound to keep ExecuteMany's
// one-transaction batching simple across dialects with different
// placeholder syntaxes.
func buildInsertStatement(schema, table string, row engine.Row) string {
	cols := make([]string, 0, len(row))
	for name := range row {
		cols = append(cols, name)
	}

	stmt := fmt.Sprintf("INSERT INTO %s.%s (", schema, table)
	for i, c := range cols {
		if i > 0 {
			stmt += ", "
		}
		stmt += c
	}
	stmt += ") VALUES ("
	for i, c := range cols {
		if i > 0 {
			stmt += ", "
		}
		stmt += sqlLiteral(row[c])
	}
	stmt += ")"
	return stmt
}

func sqlLiteral(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case string:
		escaped := ""
		for _, r := range t {
			if r == '\'' {
				escaped += "''"
			} else {
				escaped += string(r)
			}
		}
		return "'" + escaped + "'"
	case []byte:
		return sqlLiteral(string(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}
