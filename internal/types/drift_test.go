package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func p(n int) *int { return &n }

func TestClassifyDriftEquivalent(t *testing.T) {
	a := Type{Datatype: Integer}
	kind, _ := ClassifyDrift(a, a)
	assert.Equal(t, DriftEquivalent, kind)
}

func TestClassifyDriftStringNarrowingAndWidening(t *testing.T) {
	desired := Type{Datatype: String, Length: p(50)}
	actualWider := Type{Datatype: String, Length: p(100)}
	kind, _ := ClassifyDrift(desired, actualWider)
	assert.Equal(t, DriftNarrowing, kind, "actual longer than desired means shrinking desired is narrowing")

	actualShorter := Type{Datatype: String, Length: p(20)}
	kind, _ = ClassifyDrift(desired, actualShorter)
	assert.Equal(t, DriftWidening, kind)
}

func TestClassifyDriftDateTimestamp(t *testing.T) {
	kind, _ := ClassifyDrift(Type{Datatype: Timestamp}, Type{Datatype: Date})
	assert.Equal(t, DriftWidening, kind)

	kind, _ = ClassifyDrift(Type{Datatype: Date}, Type{Datatype: Timestamp})
	assert.Equal(t, DriftNarrowing, kind)
}

func TestClassifyDriftDecimalFloat(t *testing.T) {
	kind, _ := ClassifyDrift(Type{Datatype: Float}, Type{Datatype: Decimal, Precision: p(10), Scale: p(2)})
	assert.Equal(t, DriftWidening, kind)

	kind, _ = ClassifyDrift(Type{Datatype: Decimal, Precision: p(10), Scale: p(2)}, Type{Datatype: Float})
	assert.Equal(t, DriftIncompatible, kind)
}

func TestClassifyDriftIncompatibleFamilies(t *testing.T) {
	kind, _ := ClassifyDrift(Type{Datatype: Boolean}, Type{Datatype: String, Length: p(10)})
	assert.Equal(t, DriftIncompatible, kind)
}

func TestSnowflakeNumber38IsInteger(t *testing.T) {
	got := Canonicalize("snowflake", "NUMBER(38,0)")
	assert.Equal(t, Integer, got.Datatype)
}

func TestCanonicalizeDialectDispatch(t *testing.T) {
	got := Canonicalize("postgres", "VARCHAR(100)")
	assert.Equal(t, String, got.Datatype)
	assert.Equal(t, 100, *got.Length)

	got = Canonicalize("mssql", "DECIMAL(12,2)")
	assert.Equal(t, Decimal, got.Datatype)
	assert.Equal(t, 12, *got.Precision)
	assert.Equal(t, 2, *got.Scale)

	got = Canonicalize("mssql", "money")
	assert.Equal(t, Decimal, got.Datatype)
	assert.Equal(t, 19, *got.Precision)
	assert.Equal(t, 4, *got.Scale)

	got = Canonicalize("oracle", "DATE")
	assert.Equal(t, Timestamp, got.Datatype, "Oracle DATE carries a time component")

	got = Canonicalize("sap_r3", "DATS")
	assert.Equal(t, Date, got.Datatype)

	got = Canonicalize("sap_r3", "CLNT")
	assert.Equal(t, String, got.Datatype)
	assert.Equal(t, 3, *got.Length)

	got = Canonicalize("bigquery", "INT64")
	assert.Equal(t, Integer, got.Datatype)

	got = Canonicalize("unknown_dialect", "VARCHAR(10)")
	assert.Equal(t, String, got.Datatype, "unrecognized dialect hints still fall back to the generic classifier")
}
