package engine

import (
	"context"
	"database/sql"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// scanIntrospectedColumns reads the common
// (name, type, nullable, length, precision, scale) shape that every
// ANSI-information_schema-backed engine (DuckDB, Postgres, MSSQL, Fabric)
// exposes. nullableYesValue is the driver's textual spelling of "nullable"
// ("YES" for every engine here).
func scanIntrospectedColumns(rows *sql.Rows, nullableYesValue string) ([]IntrospectedColumn, error) {
	var out []IntrospectedColumn
	for rows.Next() {
		var (
			name, dataType, nullable sql.NullString
			length, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &nullable, &length, &precision, &scale); err != nil {
			return nil, elvterr.Wrap(elvterr.KindExecution, err, "scanning introspected column failed")
		}
		col := IntrospectedColumn{
			Name:     name.String,
			RawType:  dataType.String,
			Nullable: nullable.String == nullableYesValue,
		}
		if length.Valid {
			v := int(length.Int64)
			col.Length = &v
		}
		if precision.Valid {
			v := int(precision.Int64)
			col.Precision = &v
		}
		if scale.Valid {
			v := int(scale.Int64)
			col.Scale = &v
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func genericTableExists(ctx context.Context, db *sql.DB, query, schema, table string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, schema, table).Scan(&n); err != nil {
		return false, elvterr.Wrap(elvterr.KindExecution, err, "checking existence of %s.%s failed", schema, table)
	}
	return n > 0, nil
}
