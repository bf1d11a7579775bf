package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/expr"
)

func TestParseColAndLiteral(t *testing.T) {
	e, err := Parse("COL(customer_id)", "s")
	assert.NoError(t, err)
	assert.Equal(t, expr.ColumnRef{TableAlias: "s", ColumnName: "customer_id"}, e)

	e, err = Parse("'pepper'", "s")
	assert.NoError(t, err)
	assert.Equal(t, expr.L("pepper"), e)
}

func TestParseHash256ConcatWsCoalesce(t *testing.T) {
	source := "HASH256(CONCAT_WS('|', COALESCE(COL(customer_id), 'null_replaced'), 'pepper'))"
	e, err := Parse(source, "s")
	assert.NoError(t, err)

	fc, ok := e.(expr.FuncCall)
	assert.True(t, ok)
	assert.Equal(t, "HASH256", fc.Name)
	assert.Len(t, fc.Args, 1)

	concatWs, ok := fc.Args[0].(expr.FuncCall)
	assert.True(t, ok)
	assert.Equal(t, "CONCAT_WS", concatWs.Name)
	assert.Equal(t, expr.L("|"), concatWs.Args[0])

	coal, ok := concatWs.Args[1].(expr.Coalesce)
	assert.True(t, ok)
	assert.Len(t, coal.Parts, 2)
	cast, ok := coal.Parts[0].(expr.Cast)
	assert.True(t, ok)
	assert.Equal(t, "string", cast.TargetType)
}

func TestParsePlaceholder(t *testing.T) {
	e, err := Parse("{expr:mandant}", "s")
	assert.NoError(t, err)
	assert.Equal(t, expr.ColumnRef{TableAlias: "s", ColumnName: "mandant"}, e)
}

func TestParseUnsupportedReturnsError(t *testing.T) {
	_, err := Parse("NOT_A_REAL_FUNC(x)", "s")
	assert.Error(t, err)
}

func TestParseCoalesceWrongArityErrors(t *testing.T) {
	_, err := Parse("COALESCE(COL(a), 'b', 'c')", "s")
	assert.Error(t, err)
}

func TestRenderRoundTripsParse(t *testing.T) {
	source := "HASH256(CONCAT_WS('|', COALESCE(COL(customer_id), 'null_replaced'), 'pepper'))"
	e, err := Parse(source, "s")
	assert.NoError(t, err)

	rendered, err := Render(e)
	assert.NoError(t, err)
	assert.Equal(t, source, rendered)

	reparsed, err := Parse(rendered, "s")
	assert.NoError(t, err)
	assert.Equal(t, e, reparsed)
}

func TestRenderFkRewrittenExpression(t *testing.T) {
	parentSk, err := Parse("HASH256(CONCAT_WS('|', COL(customer_id), COL(customer_id)))", "s")
	assert.NoError(t, err)

	rewritten := BuildSurrogateFkExpression(parentSk, []KeyComponent{
		{ParentColumn: "customer_id", ChildExpr: Col("customer_id", "child")},
	})
	rendered, err := Render(rewritten)
	assert.NoError(t, err)
	assert.Equal(t, "HASH256(CONCAT_WS('|', COL(customer_id), COL(customer_id)))", rendered,
		"Render drops table aliases, same as COL()'s DSL source form")
}

func TestBuildSurrogateFkExpression(t *testing.T) {
	parentSk, err := Parse("HASH256(CONCAT_WS('|', COL(customer_id), COL(customer_id)))", "s")
	assert.NoError(t, err)

	childExpr := Col("customer_id", "child")
	rewritten := BuildSurrogateFkExpression(parentSk, []KeyComponent{
		{ParentColumn: "customer_id", ChildExpr: childExpr},
	})

	fc := rewritten.(expr.FuncCall)
	concatWs := fc.Args[0].(expr.FuncCall)
	// first occurrence (sep is args[0], so args[1] is first COL occurrence) stays as-is
	assert.Equal(t, expr.ColumnRef{TableAlias: "s", ColumnName: "customer_id"}, concatWs.Args[1])
	// second occurrence is replaced by the child-side expression
	assert.Equal(t, childExpr, concatWs.Args[2])
}
