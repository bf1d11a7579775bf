package dialect

import "github.com/elevata-labs/elevata-core/internal/elvterr"

// New resolves a Dialect by its lowercase name, used by the CLI's --dialect
// flag and the active profile's dialect field.
func New(name string) (Dialect, error) {
	switch name {
	case "duckdb":
		return NewDuckDB(), nil
	case "postgres", "postgresql":
		return NewPostgres(), nil
	case "mssql", "sqlserver":
		return NewMSSQL(), nil
	case "fabric":
		return NewFabric(), nil
	case "snowflake":
		return NewSnowflake(), nil
	case "bigquery":
		return NewBigQuery(), nil
	case "databricks":
		return NewDatabricks(), nil
	default:
		return nil, elvterr.New(elvterr.KindConfig, "unknown dialect %q", name)
	}
}
