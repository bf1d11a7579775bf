// Package config resolves elevata_load's connection profile: environment
// variables first, then a named profile out of a YAML profiles file, the
// way the teacher's database.Config/database.ParseGeneratorConfig resolves
// a generator config from a --config flag plus env-var overrides
// (cmd/mysqldef.go's $MYSQL_PWD override is the same pattern applied to one
// field; here it applies across the whole profile).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// Profile is one named connection target out of the YAML profiles file.
type Profile struct {
	Dialect              string `yaml:"dialect"`
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	DbName                string `yaml:"db_name"`
	Schema                string `yaml:"schema"`
	User                  string `yaml:"user"`
	Password              string `yaml:"password"`
	Path                  string `yaml:"path"`
	Account               string `yaml:"account"`
	Warehouse             string `yaml:"warehouse"`
	Role                  string `yaml:"role"`
	ProjectID             string `yaml:"project_id"`
	HTTPPath              string `yaml:"http_path"`
	AccessToken           string `yaml:"access_token"`
	MetaSchemaName        string `yaml:"meta_schema_name"`
	AutoProvisionSchemas  bool   `yaml:"auto_provision_schemas"`
	AutoProvisionTables   bool   `yaml:"auto_provision_tables"`
	AutoProvisionMetaLog  bool   `yaml:"auto_provision_meta_log"`
}

// File is the top-level shape of ELEVATA_PROFILES_PATH's YAML document.
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfilesFile reads and parses a profiles YAML file. A missing path is
// not an error - callers may run entirely off ELEVATA_* env vars.
func LoadProfilesFile(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindConfig, err, "reading profiles file %s", path)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, elvterr.Wrap(elvterr.KindConfig, err, "parsing profiles file %s", path)
	}
	return &f, nil
}

// Resolve builds the active Profile from, in priority order: the named
// profile's YAML fields, then ELEVATA_* environment variable overrides
// (env wins, mirroring mysqldef's $MYSQL_PWD-overrides-flag precedent).
func Resolve(profilesFile *File, profileName string) (Profile, error) {
	p := Profile{}
	if profilesFile != nil && profileName != "" {
		if found, ok := profilesFile.Profiles[profileName]; ok {
			p = found
		}
	}

	if v, ok := os.LookupEnv("ELEVATA_SQL_DIALECT"); ok {
		p.Dialect = v
	}
	if v, ok := os.LookupEnv("ELEVATA_DIALECT"); ok {
		p.Dialect = v
	}
	if v, ok := os.LookupEnv("ELEVATA_META_SCHEMA_NAME"); ok {
		p.MetaSchemaName = v
	} else if p.MetaSchemaName == "" {
		p.MetaSchemaName = "meta"
	}
	if v, ok := os.LookupEnv("ELEVATA_AUTO_PROVISION_SCHEMAS"); ok {
		p.AutoProvisionSchemas = parseBool(v)
	}
	if v, ok := os.LookupEnv("ELEVATA_AUTO_PROVISION_TABLES"); ok {
		p.AutoProvisionTables = parseBool(v)
	}
	if v, ok := os.LookupEnv("ELEVATA_AUTO_PROVISION_META_LOG"); ok {
		p.AutoProvisionMetaLog = parseBool(v)
	}
	if v, ok := os.LookupEnv("GOOGLE_CLOUD_PROJECT"); ok {
		p.ProjectID = v
	} else if v, ok := os.LookupEnv("GCLOUD_PROJECT"); ok {
		p.ProjectID = v
	}

	if p.Dialect == "" {
		return Profile{}, elvterr.New(elvterr.KindConfig, "no dialect resolved: set ELEVATA_DIALECT/ELEVATA_SQL_DIALECT or a profile's dialect field")
	}
	return p, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// ResolvePepper resolves the surrogate-key hashing pepper for profileName:
// SEC_<PROFILE>_PEPPER takes priority over the shared ELEVATA_PEPPER,
// matching this system's per-tenant pepper lifecycle (spec section 9 open
// question (a): pepper lifecycle across multi-tenant environments is
// resolved here as "per-profile override, shared fallback").
func ResolvePepper(profileName string) (string, error) {
	key := fmt.Sprintf("SEC_%s_PEPPER", strings.ToUpper(profileName))
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, nil
	}
	if v, ok := os.LookupEnv("ELEVATA_PEPPER"); ok && v != "" {
		return v, nil
	}
	return "", elvterr.New(elvterr.KindConfig, "no pepper resolved: set %s or ELEVATA_PEPPER", key)
}

// ToEngineConfig maps a resolved Profile onto engine.Config for the
// dialect's New<Dialect>Engine constructor.
func (p Profile) ToEngineConfig() engine.Config {
	return engine.Config{
		Dialect:     p.Dialect,
		Host:        p.Host,
		Port:        p.Port,
		Database:    p.DbName,
		Schema:      p.Schema,
		User:        p.User,
		Password:    p.Password,
		Path:        p.Path,
		Account:     p.Account,
		Warehouse:   p.Warehouse,
		Role:        p.Role,
		ProjectID:   p.ProjectID,
		HTTPPath:    p.HTTPPath,
		AccessToken: p.AccessToken,
	}
}
