package types

import "fmt"

// Dialect identifiers shared by internal/types, internal/dialect and
// internal/engine - kept as plain strings (not an enum) because the CLI and
// config layers pass dialect names through verbatim from
// ELEVATA_SQL_DIALECT/--dialect.
const (
	DialectDuckDB     = "duckdb"
	DialectPostgres   = "postgres"
	DialectMSSQL      = "mssql"
	DialectFabric     = "fabric"
	DialectSnowflake  = "snowflake"
	DialectBigQuery   = "bigquery"
	DialectDatabricks = "databricks"
)

// RenderPhysical renders a canonical Type into a dialect's physical type
// syntax, per spec section 4.7's "dialect-specific rules to preserve" table.
func RenderPhysical(dialect string, t Type) string {
	switch dialect {
	case DialectDuckDB:
		return renderDuckDB(t)
	case DialectPostgres:
		return renderPostgres(t)
	case DialectMSSQL:
		return renderMssqlFamily(t, false)
	case DialectFabric:
		return renderMssqlFamily(t, true)
	case DialectSnowflake:
		return renderSnowflake(t)
	case DialectBigQuery:
		return renderBigQuery(t)
	case DialectDatabricks:
		return renderDatabricks(t)
	default:
		return string(t.Datatype)
	}
}

func renderDuckDB(t Type) string {
	switch t.Datatype {
	case String:
		if t.Length != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Length)
		}
		return "VARCHAR"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("DECIMAL(%d,%d)", *t.Precision, *t.Scale)
		}
		return "DECIMAL"
	case Float:
		return "DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	case Binary:
		return "BLOB"
	case UUID:
		return "UUID"
	case JSON:
		return "JSON"
	default:
		return "VARCHAR"
	}
}

func renderPostgres(t Type) string {
	switch t.Datatype {
	case String:
		if t.Length != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Length)
		}
		return "TEXT"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("NUMERIC(%d,%d)", *t.Precision, *t.Scale)
		}
		return "NUMERIC"
	case Float:
		return "DOUBLE PRECISION"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMPTZ"
	case Binary:
		return "BYTEA"
	case UUID:
		return "UUID"
	case JSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

// renderMssqlFamily renders MSSQL and Fabric Warehouse types. Fabric forbids
// NVARCHAR(MAX) and requires deterministic lengths, so fabric=true caps an
// unspecified length to a fixed default instead of emitting MAX.
func renderMssqlFamily(t Type, fabric bool) string {
	switch t.Datatype {
	case String:
		if t.Length != nil {
			return fmt.Sprintf("NVARCHAR(%d)", *t.Length)
		}
		if fabric {
			return "NVARCHAR(4000)"
		}
		return "NVARCHAR(MAX)"
	case Integer:
		return "INT"
	case BigInt:
		return "BIGINT"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("DECIMAL(%d,%d)", *t.Precision, *t.Scale)
		}
		return "DECIMAL(18,2)"
	case Float:
		return "FLOAT"
	case Boolean:
		return "BIT"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "DATETIME2"
	case Binary:
		if fabric {
			return "VARBINARY(8000)"
		}
		return "VARBINARY(MAX)"
	case UUID:
		return "UNIQUEIDENTIFIER"
	case JSON:
		if fabric {
			return "NVARCHAR(4000)"
		}
		return "NVARCHAR(MAX)"
	default:
		if fabric {
			return "NVARCHAR(4000)"
		}
		return "NVARCHAR(MAX)"
	}
}

func renderSnowflake(t Type) string {
	switch t.Datatype {
	case String:
		if t.Length != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Length)
		}
		return "VARCHAR"
	case Integer:
		return "NUMBER(38,0)"
	case BigInt:
		return "NUMBER(38,0)"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("NUMBER(%d,%d)", *t.Precision, *t.Scale)
		}
		return "NUMBER(38,8)"
	case Float:
		return "FLOAT"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP_NTZ"
	case Binary:
		return "BINARY"
	case UUID:
		// Open Question (c): Snowflake has no UUID column type, so UUID
		// renders as a 36-character string. (Fabric renders UNIQUEIDENTIFIER
		// through renderMssqlFamily.)
		return "VARCHAR(36)"
	case JSON:
		return "VARIANT"
	default:
		return "VARCHAR"
	}
}

func renderBigQuery(t Type) string {
	switch t.Datatype {
	case String:
		return "STRING"
	case Integer, BigInt:
		return "INT64"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("NUMERIC(%d,%d)", *t.Precision, *t.Scale)
		}
		return "NUMERIC"
	case Float:
		return "FLOAT64"
	case Boolean:
		return "BOOL"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	case Binary:
		return "BYTES"
	case UUID:
		return "STRING"
	case JSON:
		return "JSON"
	default:
		return "STRING"
	}
}

func renderDatabricks(t Type) string {
	switch t.Datatype {
	case String:
		return "STRING"
	case Integer:
		return "INT"
	case BigInt:
		return "BIGINT"
	case Decimal:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("DECIMAL(%d,%d)", *t.Precision, *t.Scale)
		}
		return "DECIMAL(38,8)"
	case Float:
		return "DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Time:
		return "STRING" // no native TIME type
	case Timestamp:
		return "TIMESTAMP"
	case Binary:
		return "BINARY"
	case UUID:
		return "STRING"
	case JSON:
		return "STRING"
	default:
		return "STRING"
	}
}
