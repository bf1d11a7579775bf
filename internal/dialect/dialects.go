package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/naming"
	"github.com/elevata-labs/elevata-core/internal/types"
)

func defaultConcat(parts []string) string {
	return strings.Join(parts, " || ")
}

func defaultConcatWs(sepSQL string, parts []string) string {
	return fmt.Sprintf("CONCAT_WS(%s, %s)", sepSQL, strings.Join(parts, ", "))
}

func defaultCast(inner, target string) string {
	return fmt.Sprintf("CAST(%s AS %s)", inner, target)
}

func defaultTruncateStr(inner string, n int) string {
	return fmt.Sprintf("SUBSTRING(%s, 1, %d)", inner, n)
}

func sequentialPlaceholder(idx int) string { return "?" }

func dollarPlaceholder(idx int) string { return "$" + strconv.Itoa(idx) }

// NewDuckDB builds the DuckDB dialect. Grounded on
// original_source/core/metadata/rendering/dialects/duckdb.py.
func NewDuckDB() Dialect {
	return &generic{s: spec{
		name:                    types.DialectDuckDB,
		identOpen:               '"',
		identClose:              '"',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectDuckDB,
		supportsMerge:           true,
		supportsAlterColumnType: true,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("TO_HEX(SHA256(%s))", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        sequentialPlaceholder,
	}}
}

// NewPostgres builds the Postgres dialect. Grounded on base.py defaults;
// pgcrypto's digest() is used for the hash primitive.
func NewPostgres() Dialect {
	return &generic{s: spec{
		name:                    types.DialectPostgres,
		identOpen:               '"',
		identClose:              '"',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectPostgres,
		supportsMerge:           true,
		supportsAlterColumnType: true,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("ENCODE(DIGEST(%s, 'sha256'), 'hex')", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        dollarPlaceholder,
	}}
}

// NewMSSQL builds the SQL Server dialect: bracket identifiers, no native
// MERGE fallback needed (MSSQL does support MERGE), but delete detection
// uses the "DELETE t FROM ... AS t" shape since "DELETE FROM x AS t" is not
// valid T-SQL.
func NewMSSQL() Dialect {
	return &generic{s: spec{
		name:                    types.DialectMSSQL,
		identOpen:               '[',
		identClose:              ']',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectMSSQL,
		supportsMerge:           true,
		supportsAlterColumnType: true,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("CONVERT(VARCHAR(64), HASHBYTES('SHA2_256', %s), 2)", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        func(idx int) string { return "@p" + strconv.Itoa(idx) },
		deleteDetectionSql:      mssqlDeleteDetectionSql,
	}}
}

// NewFabric builds the Microsoft Fabric Warehouse dialect: same surface as
// MSSQL except no native MERGE (Fabric Warehouse does not support T-SQL
// MERGE) and no in-place ALTER COLUMN TYPE, per spec section 4.7's
// dialect-specific rules table - the materialization planner falls back to
// a rebuild sequence for both.
func NewFabric() Dialect {
	return &generic{s: spec{
		name:                    types.DialectFabric,
		identOpen:               '[',
		identClose:              ']',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectFabric,
		supportsMerge:           false,
		supportsAlterColumnType: false,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("CONVERT(VARCHAR(64), HASHBYTES('SHA2_256', %s), 2)", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        func(idx int) string { return "@p" + strconv.Itoa(idx) },
		deleteDetectionSql:      mssqlDeleteDetectionSql,
	}}
}

// NewSnowflake builds the Snowflake dialect. Unquoted identifiers fold to
// upper case in Snowflake, so QuoteIdent folds names to upper before
// quoting to keep introspected and rendered identifiers consistent.
func NewSnowflake() Dialect {
	return &generic{s: spec{
		name:                    types.DialectSnowflake,
		identOpen:               '"',
		identClose:              '"',
		identCase:               naming.CaseUpper,
		typeKey:                 types.DialectSnowflake,
		supportsMerge:           true,
		supportsAlterColumnType: true,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("SHA2(%s, 256)", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        sequentialPlaceholder,
	}}
}

// NewBigQuery builds the BigQuery dialect: backtick-quoted two-part
// dataset.table identifiers, no MERGE-vs-fallback distinction
// needed since BigQuery's MERGE is ANSI-shaped, and CONCAT_WS rewritten as
// ARRAY_TO_STRING over explicit CASTs since BigQuery has no native
// CONCAT_WS and silently drops NULLs differently than the SK DSL expects.
func NewBigQuery() Dialect {
	return &generic{s: spec{
		name:                    types.DialectBigQuery,
		identOpen:               '`',
		identClose:              '`',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectBigQuery,
		supportsMerge:           true,
		supportsAlterColumnType: false,
		supportsDeleteDetection: true,
		concatExpr:              func(parts []string) string { return fmt.Sprintf("CONCAT(%s)", strings.Join(parts, ", ")) },
		concatWsExpr: func(sepSQL string, parts []string) string {
			casted := make([]string, len(parts))
			for i, p := range parts {
				casted[i] = fmt.Sprintf("CAST(%s AS STRING)", p)
			}
			return fmt.Sprintf("ARRAY_TO_STRING([%s], %s)", strings.Join(casted, ", "), sepSQL)
		},
		hashExpr:         func(inner string) string { return fmt.Sprintf("TO_HEX(SHA256(%s))", inner) },
		castExpr:         func(inner, target string) string { return fmt.Sprintf("CAST(%s AS %s)", inner, bigQueryCastTarget(target)) },
		truncateStrExpr:  func(inner string, n int) string { return fmt.Sprintf("SUBSTR(%s, 1, %d)", inner, n) },
		literal:          renderLiteralDefault,
		paramPlaceholder: func(idx int) string { return "?" },
	}}
}

// bigQueryCastTarget maps the small set of generic cast target names the
// compiler produces (e.g. "string") onto BigQuery's STRING/INT64/FLOAT64
// type names; anything already dialect-specific passes through untouched.
func bigQueryCastTarget(target string) string {
	switch strings.ToUpper(target) {
	case "STRING", "VARCHAR", "TEXT":
		return "STRING"
	case "INT", "INTEGER", "BIGINT":
		return "INT64"
	case "FLOAT", "DOUBLE":
		return "FLOAT64"
	default:
		return target
	}
}

// NewDatabricks builds the Databricks (Unity Catalog / Delta Lake) dialect.
// RenameColumnSql overrides the generic shape to prepend the ALTER TABLE
// ... SET TBLPROPERTIES ('delta.columnMapping.mode' = 'name') precondition
// Delta requires before a column rename is legal.
func NewDatabricks() Dialect {
	return &generic{s: spec{
		name:                    types.DialectDatabricks,
		identOpen:               '`',
		identClose:              '`',
		identCase:               naming.CaseLower,
		typeKey:                 types.DialectDatabricks,
		supportsMerge:           true,
		supportsAlterColumnType: false,
		supportsDeleteDetection: true,
		concatExpr:              defaultConcat,
		concatWsExpr:            defaultConcatWs,
		hashExpr:                func(inner string) string { return fmt.Sprintf("SHA2(%s, 256)", inner) },
		castExpr:                defaultCast,
		truncateStrExpr:         defaultTruncateStr,
		literal:                 renderLiteralDefault,
		paramPlaceholder:        sequentialPlaceholder,
		renameColumnSql:         databricksRenameColumnSql,
	}}
}

func databricksRenameColumnSql(g *generic, schema, table, oldName, newName string) string {
	fqn := g.RenderTableIdentifier(schema, table)
	precondition := fmt.Sprintf("ALTER TABLE %s SET TBLPROPERTIES ('delta.columnMapping.mode' = 'name');", fqn)
	rename := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", fqn, g.QuoteIdent(oldName), g.QuoteIdent(newName))
	return precondition + "\n" + rename
}
