package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/expr"
	"github.com/elevata-labs/elevata-core/internal/logicalplan"
	"github.com/elevata-labs/elevata-core/internal/types"
)

func TestQuoteIdentCaseFolding(t *testing.T) {
	assert.Equal(t, `"customer_id"`, NewDuckDB().QuoteIdent("customer_id"))
	assert.Equal(t, `"CUSTOMER_ID"`, NewSnowflake().QuoteIdent("customer_id"))
	assert.Equal(t, "[customer_id]", NewMSSQL().QuoteIdent("customer_id"))
	assert.Equal(t, "`customer_id`", NewBigQuery().QuoteIdent("customer_id"))
}

func TestCapabilityFlagsPerDialectRulesTable(t *testing.T) {
	assert.True(t, NewDuckDB().SupportsMerge())
	assert.True(t, NewDuckDB().SupportsAlterColumnType())

	assert.False(t, NewFabric().SupportsMerge())
	assert.False(t, NewFabric().SupportsAlterColumnType())

	assert.True(t, NewMSSQL().SupportsMerge())
	assert.True(t, NewMSSQL().SupportsAlterColumnType())

	assert.False(t, NewBigQuery().SupportsAlterColumnType())
	assert.False(t, NewDatabricks().SupportsAlterColumnType())
}

func TestMssqlAndFabricDeleteDetectionUsesDeleteTShape(t *testing.T) {
	for _, d := range []Dialect{NewMSSQL(), NewFabric()} {
		sql := d.DeleteDetectionSql("rawcore", "customer", "stage", "customer", []string{"s.id = t.id"}, "")
		assert.Contains(t, sql, "DELETE t FROM")
		assert.NotContains(t, sql, "DELETE FROM")
	}
}

func TestOtherDialectsUseDeleteFromShape(t *testing.T) {
	for _, d := range []Dialect{NewDuckDB(), NewPostgres(), NewSnowflake(), NewBigQuery(), NewDatabricks()} {
		sql := d.DeleteDetectionSql("rawcore", "customer", "stage", "customer", []string{"s.id = t.id"}, "")
		assert.True(t, len(sql) > 0 && sql[:11] == "DELETE FROM", d.Name())
	}
}

func TestBigQueryConcatWsRewrittenAsArrayToString(t *testing.T) {
	bq := NewBigQuery()
	sql := bq.ConcatWsExpr("'-'", []string{`"a"`, `"b"`})
	assert.Contains(t, sql, "ARRAY_TO_STRING(")
	assert.Contains(t, sql, `CAST("a" AS STRING)`)
	assert.Contains(t, sql, `CAST("b" AS STRING)`)
}

func TestDatabricksRenameColumnInjectsColumnMappingPrecondition(t *testing.T) {
	sql := NewDatabricks().RenameColumnSql("rawcore", "customer", "old_name", "new_name")
	assert.Contains(t, sql, "delta.columnMapping.mode")
	assert.Contains(t, sql, "RENAME COLUMN")
}

func TestRenderExprSurrogateKeyHashAcrossDialects(t *testing.T) {
	sk := expr.HASH256(expr.CONCAT(expr.COL("tenant_id"), expr.L("|"), expr.COL("customer_id")))

	for _, d := range []Dialect{NewDuckDB(), NewPostgres(), NewSnowflake(), NewMSSQL(), NewBigQuery(), NewDatabricks()} {
		sql, err := RenderExpr(d, sk)
		assert.NoError(t, err, d.Name())
		assert.NotEmpty(t, sql, d.Name())
	}
}

func TestRenderSelectWithJoinAndWhere(t *testing.T) {
	plan := &logicalplan.LogicalSelect{
		From: logicalplan.TableSource{Schema: "stage", Table: "orders", Alias: "s"},
		Joins: []logicalplan.JoinClause{
			{
				Kind:       logicalplan.JoinLeft,
				Source:     logicalplan.TableSource{Schema: "stage", Table: "customers", Alias: "c"},
				Predicates: []expr.Expr{expr.FUNC("=", expr.COL("customer_id", "s"), expr.COL("customer_id", "c"))},
			},
		},
		Projections: []logicalplan.Projection{
			{Alias: "order_id", Expr: expr.COL("order_id", "s")},
		},
		Where: []expr.Expr{expr.FUNC(">", expr.COL("amount", "s"), expr.L(0))},
	}

	sql, err := RenderPlan(NewDuckDB(), plan)
	assert.NoError(t, err)
	assert.Contains(t, sql, "SELECT")
	assert.Contains(t, sql, "LEFT JOIN")
	assert.Contains(t, sql, "WHERE")
}

func TestRenderUnionJoinsBranchesWithKeyword(t *testing.T) {
	branch := func(col string) logicalplan.Plan {
		return &logicalplan.LogicalSelect{
			From:        logicalplan.TableSource{Schema: "rawcore", Table: "t", Alias: "t"},
			Projections: []logicalplan.Projection{{Alias: col, Expr: expr.COL(col, "t")}},
		}
	}
	u := &logicalplan.LogicalUnion{
		Branches:      []logicalplan.Plan{branch("a"), branch("a")},
		UnionAll:      true,
		OutputColumns: []string{"a"},
	}
	sql, err := RenderPlan(NewDuckDB(), u)
	assert.NoError(t, err)
	assert.Contains(t, sql, "UNION ALL")
}

func TestRenderPhysicalTypeRespectsDialect(t *testing.T) {
	str := types.Type{Datatype: types.CanonicalString, Length: intPtr(50)}
	assert.NotEmpty(t, NewDuckDB().RenderPhysicalType(str))
	assert.NotEmpty(t, NewFabric().RenderPhysicalType(str))
}

func intPtr(n int) *int { return &n }
