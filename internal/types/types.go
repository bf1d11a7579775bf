// Package types implements the canonical type system: the dialect-neutral
// type tokens, per-dialect parsing of raw physical type strings into
// canonical tuples, and the drift classifier used by the Materialization
// Planner to decide whether a physical column needs ENSURE/ADD/ALTER/rebuild
// treatment.
//
// Grounded on original_source/core/metadata/ingestion/types_map.py.
package types

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonical is one of the dialect-neutral type tokens.
type Canonical string

const (
	String    Canonical = "STRING"
	Integer   Canonical = "INTEGER" // SMALLINT/TINYINT normalize here
	BigInt    Canonical = "BIGINT"
	Decimal   Canonical = "DECIMAL"
	Float     Canonical = "FLOAT"
	Boolean   Canonical = "BOOLEAN"
	Date      Canonical = "DATE"
	Time      Canonical = "TIME"
	Timestamp Canonical = "TIMESTAMP"
	Binary    Canonical = "BINARY"
	UUID      Canonical = "UUID"
	JSON      Canonical = "JSON"
)

// Type is the canonical 4-tuple: datatype plus optional length / precision /
// scale, mirroring types_map.py's CanonicalTypeTuple.
type Type struct {
	Datatype  Canonical
	Length    *int
	Precision *int
	Scale     *int
}

func intPtr(n int) *int { return &n }

var paramsRe = regexp.MustCompile(`\(([^)]+)\)`)

// extractParams mirrors _extract_params: pulls (length, precision, scale,
// hasMax) out of a raw type string like "NVARCHAR(100)" or "DECIMAL(12,2)"
// or "VARCHAR(MAX)".
func extractParams(raw string) (length, precision, scale *int, hasMax bool) {
	t := strings.ToLower(strings.TrimSpace(raw))
	hasMax = strings.Contains(t, "max")
	m := paramsRe.FindStringSubmatch(t)
	if m == nil {
		return nil, nil, nil, hasMax
	}
	parts := strings.Split(m[1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			return intPtr(n), nil, nil, hasMax
		}
		return nil, nil, nil, hasMax
	}
	p, errP := strconv.Atoi(parts[0])
	s, errS := strconv.Atoi(parts[1])
	if errP == nil && errS == nil {
		return nil, intPtr(p), intPtr(s), hasMax
	}
	return nil, nil, nil, hasMax
}

// genericFallback mirrors _generic_fallback: keyword-matches a raw type
// string against the canonical families when no dialect-specific table
// entry applies.
func genericFallback(raw string, length, precision, scale *int) Type {
	tl := strings.ToLower(raw)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(tl, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("char", "text", "string"):
		return Type{Datatype: String, Length: length}
	case has("numeric", "decimal", "number", "money", "bignumeric"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}
	case has("double", "float", "real"):
		return Type{Datatype: Float}
	case strings.Contains(tl, "bigint"):
		return Type{Datatype: BigInt}
	case has("int", "integer", "smallint", "tinyint", "mediumint"):
		return Type{Datatype: Integer}
	case strings.Contains(tl, "boolean") || strings.Contains(tl, "bool") || strings.TrimSpace(tl) == "bit":
		return Type{Datatype: Boolean}
	case has("uuid", "uniqueidentifier"):
		return Type{Datatype: UUID}
	case has("json", "variant", "super", "object", "array", "geography"):
		return Type{Datatype: JSON}
	case strings.Contains(tl, "date") && strings.Contains(tl, "time"):
		return Type{Datatype: Timestamp}
	case strings.HasPrefix(tl, "timestamp") || strings.Contains(tl, "datetime"):
		return Type{Datatype: Timestamp}
	case strings.TrimSpace(tl) == "date":
		return Type{Datatype: Date}
	case strings.HasPrefix(tl, "time"):
		return Type{Datatype: Time}
	case has("bytea", "binary", "varbinary", "blob", "image", "raw", "bytes"):
		return Type{Datatype: Binary}
	default:
		return Type{Datatype: String}
	}
}

// Canonicalize parses a dialect-specific raw type string into the canonical
// 4-tuple. dialect selects a dialect-specific dispatch table before falling
// back to the generic keyword matcher for hints it does not recognize.
func Canonicalize(dialect string, raw string) Type {
	length, precision, scale, hasMax := extractParams(raw)
	if hasMax {
		length = nil
	}
	t := strings.ToLower(strings.TrimSpace(raw))
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(t, s) {
				return true
			}
		}
		return false
	}

	var mapped Type
	var ok bool
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "mssql", "sqlserver":
		mapped, ok = mapMSSQL(t, length, precision, scale, hasMax, has)
	case "postgresql", "postgres":
		mapped, ok = mapPostgreSQL(t, length, precision, scale, has)
	case "mysql":
		mapped, ok = mapMySQL(t, length, precision, scale, has)
	case "oracle":
		mapped, ok = mapOracle(t, length, precision, scale, has)
	case "snowflake":
		mapped, ok = mapSnowflake(t, length, precision, scale, has)
	case "bigquery":
		mapped, ok = mapBigQuery(t, precision, scale)
	case "redshift":
		mapped, ok = mapRedshift(t, length, precision, scale, has)
	case "duckdb":
		mapped, ok = mapDuckDB(t, length, precision, scale, has)
	case "hana", "sap_hana", "saphana", "sap":
		mapped, ok = mapHANA(t, length, precision, scale, has)
	case "fabric":
		mapped, ok = mapFabric(t, length, precision, scale, has)
	case "sap_r3", "abap":
		mapped, ok = mapSAPR3(t, length, precision, scale)
	}
	if ok {
		return mapped
	}
	return genericFallback(raw, length, precision, scale)
}

// mapMSSQL ports the "mssql" branch of map_sql_type.
func mapMSSQL(t string, length, precision, scale *int, hasMax bool, has func(...string) bool) (Type, bool) {
	switch {
	case has("nvarchar", "varchar", "nchar", "char", "ntext", "text"):
		if hasMax {
			return Type{Datatype: String}, true
		}
		l := length
		if !has("char", "varchar", "nvarchar") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case t == "bit":
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("tinyint", "smallint", "int"):
		return Type{Datatype: Integer}, true
	case t == "money":
		return Type{Datatype: Decimal, Precision: intPtr(19), Scale: intPtr(4)}, true
	case t == "smallmoney":
		return Type{Datatype: Decimal, Precision: intPtr(10), Scale: intPtr(4)}, true
	case has("decimal", "numeric"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("float", "real"):
		return Type{Datatype: Float}, true
	case has("datetime", "datetime2", "smalldatetime", "datetimeoffset", "timestamp"):
		return Type{Datatype: Timestamp}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case strings.Contains(t, "uniqueidentifier"):
		return Type{Datatype: UUID}, true
	case has("varbinary", "binary", "image", "rowversion"):
		return Type{Datatype: Binary}, true
	}
	return Type{}, false
}

// mapPostgreSQL ports the "postgresql" branch of map_sql_type.
func mapPostgreSQL(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("character varying", "varchar", "char", "text"):
		l := length
		if !has("char", "varchar", "character varying") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case strings.Contains(t, "boolean"):
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "bigint") || t == "int8":
		return Type{Datatype: BigInt}, true
	case has("integer", "int4", "smallint", "int2"):
		return Type{Datatype: Integer}, true
	case has("numeric", "decimal"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("double precision", "real", "float"):
		return Type{Datatype: Float}, true
	case strings.HasPrefix(t, "timestamp"):
		return Type{Datatype: Timestamp}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case strings.Contains(t, "uuid"):
		return Type{Datatype: UUID}, true
	case strings.Contains(t, "bytea"):
		return Type{Datatype: Binary}, true
	case strings.Contains(t, "jsonb") || t == "json":
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapMySQL ports the "mysql" branch of map_sql_type.
func mapMySQL(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar", "char", "text", "tinytext", "mediumtext", "longtext"):
		l := length
		if !has("char", "varchar") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case strings.HasPrefix(t, "tinyint(1)") || t == "boolean" || t == "bool":
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("tinyint", "smallint", "mediumint", "int"):
		return Type{Datatype: Integer}, true
	case has("decimal", "numeric"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("float", "double"):
		return Type{Datatype: Float}, true
	case strings.Contains(t, "datetime") || t == "timestamp":
		return Type{Datatype: Timestamp}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case t == "time":
		return Type{Datatype: Time}, true
	case has("binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob"):
		return Type{Datatype: Binary}, true
	case strings.Contains(t, "json"):
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapOracle ports the "oracle" branch of map_sql_type.
func mapOracle(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar2", "nvarchar2", "char", "nchar", "clob", "nclob"):
		l := length
		if !has("char", "varchar2", "nvarchar2") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case strings.HasPrefix(t, "number") || strings.Contains(t, "numeric") || strings.Contains(t, "decimal"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("binary_float", "binary_double", "float"):
		return Type{Datatype: Float}, true
	case t == "date":
		// Oracle DATE carries a time component; normalize to TIMESTAMP.
		return Type{Datatype: Timestamp}, true
	case strings.HasPrefix(t, "timestamp"):
		return Type{Datatype: Timestamp}, true
	case has("raw", "long raw", "blob"):
		return Type{Datatype: Binary}, true
	}
	return Type{}, false
}

// mapSnowflake ports the "snowflake" branch of map_sql_type.
func mapSnowflake(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar", "string", "char", "text"):
		l := length
		if !has("char", "varchar", "string") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case strings.HasPrefix(t, "number") || strings.Contains(t, "decimal") || strings.Contains(t, "numeric"):
		// Snowflake frequently represents integer columns as NUMBER(38,0);
		// treat that as INTEGER to avoid persistent false-positive drift.
		if precision != nil && *precision == 38 && (scale == nil || *scale == 0) {
			return Type{Datatype: Integer}, true
		}
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("int", "integer", "smallint", "tinyint", "byteint"):
		return Type{Datatype: Integer}, true
	case has("float", "double", "real"):
		return Type{Datatype: Float}, true
	case strings.Contains(t, "boolean"):
		return Type{Datatype: Boolean}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case strings.HasPrefix(t, "timestamp"):
		return Type{Datatype: Timestamp}, true
	case has("variant", "object", "array"):
		return Type{Datatype: JSON}, true
	case strings.Contains(t, "binary"):
		return Type{Datatype: Binary}, true
	}
	return Type{}, false
}

// mapBigQuery ports the "bigquery" branch of map_sql_type. BigQuery's type
// names are exact tokens, never parameterized, so no length/has() matching.
func mapBigQuery(t string, precision, scale *int) (Type, bool) {
	switch t {
	case "string":
		return Type{Datatype: String}, true
	case "bytes":
		return Type{Datatype: Binary}, true
	case "int64":
		return Type{Datatype: Integer}, true
	case "bignumeric", "numeric", "decimal":
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case "float64":
		return Type{Datatype: Float}, true
	case "bool", "boolean":
		return Type{Datatype: Boolean}, true
	case "date":
		return Type{Datatype: Date}, true
	case "time":
		return Type{Datatype: Time}, true
	case "datetime", "timestamp":
		return Type{Datatype: Timestamp}, true
	case "json", "geography":
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapRedshift ports the "redshift" branch of map_sql_type.
func mapRedshift(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar", "char", "bpchar"):
		l := length
		if !has("varchar", "char", "bpchar") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case strings.Contains(t, "boolean"):
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("int", "integer", "smallint"):
		return Type{Datatype: Integer}, true
	case has("numeric", "decimal"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("real", "float4", "double precision", "float8"):
		return Type{Datatype: Float}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case has("timestamp", "timestamptz"):
		return Type{Datatype: Timestamp}, true
	case strings.Contains(t, "super"):
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapDuckDB ports the "duckdb" branch of map_sql_type.
func mapDuckDB(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar", "char", "text"):
		l := length
		if !has("char", "varchar") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case has("boolean", "bool"):
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "hugeint") || strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("tinyint", "smallint", "int", "integer", "uint32"):
		return Type{Datatype: Integer}, true
	case has("decimal", "numeric"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("double", "float", "real"):
		return Type{Datatype: Float}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case has("timestamp", "timestamptz"):
		return Type{Datatype: Timestamp}, true
	case strings.Contains(t, "json"):
		return Type{Datatype: JSON}, true
	case has("blob", "binary", "varbinary"):
		return Type{Datatype: Binary}, true
	}
	return Type{}, false
}

// mapHANA ports the "sap"/"hana"/"sap_hana"/"saphana" branch of map_sql_type.
func mapHANA(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("nvarchar", "varchar", "nchar", "char", "alphanum", "shorttext", "clob", "nclob", "text"):
		l := length
		if !has("char", "varchar", "nvarchar", "nchar", "alphanum", "shorttext") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case has("tinyint", "smallint", "integer", "int", "bigint"):
		if strings.Contains(t, "bigint") {
			return Type{Datatype: BigInt}, true
		}
		return Type{Datatype: Integer}, true
	case has("decimal", "dec", "numeric", "number"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("real", "double", "float", "binary_float", "binary_double"):
		return Type{Datatype: Float}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case has("timestamp", "seconddate", "longdate", "longtime"):
		return Type{Datatype: Timestamp}, true
	case strings.Contains(t, "boolean") || t == "bool":
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "uuid"):
		return Type{Datatype: UUID}, true
	case has("varbinary", "binary", "blob"):
		return Type{Datatype: Binary}, true
	case strings.Contains(t, "json"):
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapFabric ports the "fabric" branch of map_sql_type (Fabric Warehouse).
func mapFabric(t string, length, precision, scale *int, has func(...string) bool) (Type, bool) {
	switch {
	case has("varchar", "char", "text"):
		l := length
		if !has("char", "varchar") || length == nil {
			l = nil
		}
		return Type{Datatype: String, Length: l}, true
	case t == "bit" || has("boolean", "bool"):
		return Type{Datatype: Boolean}, true
	case strings.Contains(t, "bigint"):
		return Type{Datatype: BigInt}, true
	case has("tinyint", "smallint", "int", "integer"):
		return Type{Datatype: Integer}, true
	case has("decimal", "numeric"):
		return Type{Datatype: Decimal, Precision: precision, Scale: scale}, true
	case has("float", "double", "real"):
		return Type{Datatype: Float}, true
	case t == "date":
		return Type{Datatype: Date}, true
	case strings.HasPrefix(t, "time"):
		return Type{Datatype: Time}, true
	case has("datetime", "datetime2", "timestamp"):
		return Type{Datatype: Timestamp}, true
	case has("binary", "varbinary", "image"):
		return Type{Datatype: Binary}, true
	case strings.Contains(t, "json"):
		return Type{Datatype: JSON}, true
	}
	return Type{}, false
}

// mapSAPR3 ports the "sap_r3"/"abap" branch of map_sql_type: ABAP
// dictionary domain codes rather than SQL type names. Unlike the other
// dialects it always matches (falls through to a STRING default for unusual
// DDIC types), mirroring the original's unconditional return.
func mapSAPR3(t string, length, precision, scale *int) (Type, bool) {
	switch {
	case strings.HasPrefix(t, "char") || strings.HasPrefix(t, "nchar"):
		return Type{Datatype: String, Length: length}, true
	case strings.HasPrefix(t, "lchr") || t == "string":
		return Type{Datatype: String}, true
	case strings.HasPrefix(t, "numc"):
		return Type{Datatype: String, Length: length}, true
	case t == "dats":
		return Type{Datatype: Date}, true
	case t == "tims":
		return Type{Datatype: Time}, true
	case strings.HasPrefix(t, "dec") || t == "p" || strings.HasPrefix(t, "p(") || strings.HasPrefix(t, "curr") || strings.HasPrefix(t, "quan"):
		p := precision
		if p == nil {
			p = length
		}
		return Type{Datatype: Decimal, Precision: p, Scale: scale}, true
	case t == "int1" || t == "int2" || t == "int4":
		return Type{Datatype: Integer}, true
	case t == "int8":
		return Type{Datatype: BigInt}, true
	case t == "fltp" || strings.HasPrefix(t, "float"):
		return Type{Datatype: Float}, true
	case strings.HasPrefix(t, "raw") || t == "xstring" || t == "rawstring" || t == "lraw":
		l := length
		if !strings.HasPrefix(t, "raw(") {
			l = nil
		}
		return Type{Datatype: Binary, Length: l}, true
	case t == "clnt":
		return Type{Datatype: String, Length: intPtr(3)}, true
	case t == "lang":
		return Type{Datatype: String, Length: intPtr(1)}, true
	case t == "cuky":
		return Type{Datatype: String, Length: intPtr(5)}, true
	case t == "unit":
		return Type{Datatype: String, Length: intPtr(3)}, true
	}
	return Type{Datatype: String}, true
}
