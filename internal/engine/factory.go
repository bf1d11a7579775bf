package engine

import (
	"context"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// New resolves an Engine by dialect name, used by the CLI to open the one
// execution engine a run owns for its lifetime (spec section 5).
func New(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Dialect {
	case "duckdb":
		return NewDuckDBEngine(cfg)
	case "postgres", "postgresql":
		return NewPostgresEngine(cfg)
	case "mssql", "sqlserver":
		return NewMSSQLEngine(cfg)
	case "fabric":
		return NewFabricEngine(cfg)
	case "snowflake":
		return NewSnowflakeEngine(cfg)
	case "bigquery":
		return NewBigQueryEngine(ctx, cfg)
	case "databricks":
		return NewDatabricksEngine(cfg)
	case "mysql":
		return NewMySQLEngine(cfg)
	default:
		return nil, elvterr.New(elvterr.KindConfig, "unknown dialect %q", cfg.Dialect)
	}
}
