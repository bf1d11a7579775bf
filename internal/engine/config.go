package engine

// Config is the connection configuration for one target system, resolved
// by internal/config from ELEVATA_* environment variables or a YAML
// profile. Not every field applies to every dialect; unused fields are
// ignored by that dialect's constructor.
type Config struct {
	Dialect  string
	Host     string
	Port     int
	Database string
	Schema   string
	User     string
	Password string

	// Path is used by DuckDB (a file path, or ":memory:").
	Path string

	// Account/Warehouse/Role are Snowflake-specific.
	Account   string
	Warehouse string
	Role      string

	// ProjectID is BigQuery-specific (Database holds the BigQuery dataset
	// name).
	ProjectID string

	// HTTPPath/AccessToken are Databricks-specific (SQL warehouse HTTP path
	// and a personal access token).
	HTTPPath    string
	AccessToken string
}
