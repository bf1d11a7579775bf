package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/engine"
	"github.com/elevata-labs/elevata-core/internal/types"
)

func strPtr(n int) *int { return &n }

func TestBuildEmitsCreateTableWhenTableMissing(t *testing.T) {
	p := Build(dialect.NewDuckDB(), "rawcore", "customer", nil, "", true, false, nil,
		[]DesiredColumn{{Name: "customer_key", Type: types.Type{Datatype: types.BigInt}}}, Policy{})
	assert.Len(t, p.Steps, 1)
	assert.Equal(t, OpCreateTable, p.Steps[0].Op)
}

func TestBuildEmitsAddColumnForMissingColumn(t *testing.T) {
	p := Build(dialect.NewDuckDB(), "rawcore", "customer", nil, "customer", true, true,
		[]engine.IntrospectedColumn{{Name: "customer_key", RawType: "BIGINT"}},
		[]DesiredColumn{
			{Name: "customer_key", Type: types.Type{Datatype: types.BigInt}},
			{Name: "email", Type: types.Type{Datatype: types.String, Length: strPtr(100)}},
		}, Policy{})
	assert.Len(t, p.Steps, 1)
	assert.Equal(t, OpAddColumn, p.Steps[0].Op)
}

func TestBuildEmitsRenameColumnWhenActualNameInFormerNames(t *testing.T) {
	p := Build(dialect.NewDuckDB(), "rawcore", "customer", nil, "customer", true, true,
		[]engine.IntrospectedColumn{{Name: "cust_email", RawType: "VARCHAR(100)"}},
		[]DesiredColumn{{Name: "email", Type: types.Type{Datatype: types.String, Length: strPtr(100)}, FormerNames: []string{"cust_email"}}},
		Policy{})
	assert.Len(t, p.Steps, 1)
	assert.Equal(t, OpRenameColumn, p.Steps[0].Op)
}

func TestNarrowingDriftBlocksUnlessAllowLossy(t *testing.T) {
	actual := []engine.IntrospectedColumn{{Name: "amount", RawType: "NUMERIC(18,4)"}}
	desired := []DesiredColumn{{Name: "amount", Type: types.Type{Datatype: types.Decimal, Precision: strPtr(10), Scale: strPtr(2)}}}

	blocked := Build(dialect.NewDuckDB(), "rawcore", "orders", nil, "orders", true, true, actual, desired, Policy{})
	assert.NotEmpty(t, blocked.BlockingErrors)

	allowed := Build(dialect.NewDuckDB(), "rawcore", "orders", nil, "orders", true, true, actual, desired, Policy{AllowLossyTypeDrift: true})
	assert.Empty(t, allowed.BlockingErrors)
	assert.NotEmpty(t, allowed.Warnings)
}

func TestFullRefreshMakesTypeDriftInformationalOnly(t *testing.T) {
	actual := []engine.IntrospectedColumn{{Name: "amount", RawType: "NUMERIC(18,4)"}}
	desired := []DesiredColumn{{Name: "amount", Type: types.Type{Datatype: types.Decimal, Precision: strPtr(10), Scale: strPtr(2)}}}

	p := Build(dialect.NewDuckDB(), "rawcore", "orders", nil, "orders", true, true, actual, desired, Policy{FullRefresh: true})
	assert.Empty(t, p.BlockingErrors)
	assert.NotEmpty(t, p.Warnings)
}

func TestNoTypeChangesSkipsEvolutionStep(t *testing.T) {
	actual := []engine.IntrospectedColumn{{Name: "amount", RawType: "NUMERIC(10,2)"}}
	desired := []DesiredColumn{{Name: "amount", Type: types.Type{Datatype: types.Decimal, Precision: strPtr(18), Scale: strPtr(4)}}}

	p := Build(dialect.NewDuckDB(), "rawcore", "orders", nil, "orders", true, true, actual, desired, Policy{NoTypeChanges: true})
	assert.Empty(t, p.Steps)
}
