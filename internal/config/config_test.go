package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestResolvePrefersProfileThenEnvOverride(t *testing.T) {
	clearEnv(t, "ELEVATA_SQL_DIALECT", "ELEVATA_DIALECT", "ELEVATA_META_SCHEMA_NAME",
		"ELEVATA_AUTO_PROVISION_SCHEMAS", "ELEVATA_AUTO_PROVISION_TABLES",
		"ELEVATA_AUTO_PROVISION_META_LOG", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT")

	file := &File{Profiles: map[string]Profile{
		"prod": {Dialect: "postgres", Host: "db.internal", DbName: "warehouse"},
	}}

	p, err := Resolve(file, "prod")
	assert.NoError(t, err)
	assert.Equal(t, "postgres", p.Dialect)
	assert.Equal(t, "meta", p.MetaSchemaName)

	os.Setenv("ELEVATA_DIALECT", "snowflake")
	p, err = Resolve(file, "prod")
	assert.NoError(t, err)
	assert.Equal(t, "snowflake", p.Dialect)
	assert.Equal(t, "db.internal", p.Host)
}

func TestResolveFailsWithNoDialect(t *testing.T) {
	clearEnv(t, "ELEVATA_SQL_DIALECT", "ELEVATA_DIALECT")
	_, err := Resolve(&File{}, "missing")
	assert.Error(t, err)
}

func TestResolveAutoProvisionFlagsFromEnv(t *testing.T) {
	clearEnv(t, "ELEVATA_DIALECT", "ELEVATA_AUTO_PROVISION_SCHEMAS", "ELEVATA_AUTO_PROVISION_TABLES", "ELEVATA_AUTO_PROVISION_META_LOG")
	os.Setenv("ELEVATA_DIALECT", "duckdb")
	os.Setenv("ELEVATA_AUTO_PROVISION_SCHEMAS", "true")
	os.Setenv("ELEVATA_AUTO_PROVISION_TABLES", "true")

	p, err := Resolve(&File{}, "")
	assert.NoError(t, err)
	assert.True(t, p.AutoProvisionSchemas)
	assert.True(t, p.AutoProvisionTables)
	assert.False(t, p.AutoProvisionMetaLog)
}

func TestResolvePepperPerProfileOverridesShared(t *testing.T) {
	clearEnv(t, "SEC_PROD_PEPPER", "ELEVATA_PEPPER")
	os.Setenv("ELEVATA_PEPPER", "shared-pepper")

	pepper, err := ResolvePepper("prod")
	assert.NoError(t, err)
	assert.Equal(t, "shared-pepper", pepper)

	os.Setenv("SEC_PROD_PEPPER", "prod-only-pepper")
	pepper, err = ResolvePepper("prod")
	assert.NoError(t, err)
	assert.Equal(t, "prod-only-pepper", pepper)
}

func TestResolvePepperMissingIsError(t *testing.T) {
	clearEnv(t, "SEC_DEV_PEPPER", "ELEVATA_PEPPER")
	_, err := ResolvePepper("dev")
	assert.Error(t, err)
}

func TestToEngineConfigMapsFields(t *testing.T) {
	p := Profile{Dialect: "bigquery", ProjectID: "proj-1", DbName: "analytics"}
	cfg := p.ToEngineConfig()
	assert.Equal(t, "bigquery", cfg.Dialect)
	assert.Equal(t, "proj-1", cfg.ProjectID)
	assert.Equal(t, "analytics", cfg.Database)
}
