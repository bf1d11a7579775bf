// Package expr defines the vendor-neutral expression AST that the
// query-tree compiler and the surrogate DSL parser produce, and that each
// SQL dialect renders into concrete syntax.
//
// Grounded on original_source/core/metadata/rendering/expr.py, translated
// from Python dataclasses into a Go sum type via a closed Expr interface and
// an unexported marker method (the idiomatic Go shape for "one of these
// node kinds", as seen in this corpus's schema.DDL interface in
// sqldef's schema/schema.go).
package expr

// Expr is implemented by every expression AST node. The unexported exprNode
// method closes the set to this package, matching sqldef's schema.DDL
// pattern of a marker method instead of Python's Expr base class.
type Expr interface {
	exprNode()
}

// Literal is a simple literal value: string, number, bool, or nil.
type Literal struct {
	Value any
}

func (Literal) exprNode() {}

// L is a convenience constructor for Literal.
func L(value any) Literal { return Literal{Value: value} }

// ColumnRef references a column, optionally qualified by a table alias.
type ColumnRef struct {
	TableAlias string // "" if unqualified
	ColumnName string
}

func (ColumnRef) exprNode() {}

// COL is a convenience constructor for ColumnRef.
func COL(columnName string, tableAlias ...string) ColumnRef {
	alias := ""
	if len(tableAlias) > 0 {
		alias = tableAlias[0]
	}
	return ColumnRef{TableAlias: alias, ColumnName: columnName}
}

// FuncCall is a generic function call, e.g. UPPER(col), HASH256(x).
type FuncCall struct {
	Name string
	Args []Expr
}

func (FuncCall) exprNode() {}

// FUNC is a convenience constructor for FuncCall.
func FUNC(name string, args ...Expr) FuncCall {
	return FuncCall{Name: name, Args: args}
}

// HASH256 builds the vendor-neutral 256-bit hash function call.
func HASH256(e Expr) Expr { return FuncCall{Name: "HASH256", Args: []Expr{e}} }

// Concat is vendor-neutral string concatenation of multiple parts.
type Concat struct {
	Parts []Expr
}

func (Concat) exprNode() {}

// CONCAT is a convenience constructor for Concat.
func CONCAT(parts ...Expr) Expr { return Concat{Parts: parts} }

// Coalesce is vendor-neutral COALESCE(a, b, ...).
type Coalesce struct {
	Parts []Expr
}

func (Coalesce) exprNode() {}

// COALESCE is a convenience constructor for Coalesce.
func COALESCE(parts ...Expr) Expr { return Coalesce{Parts: parts} }

// Cast is a vendor-neutral CAST(expr AS targetType), where targetType is a
// canonical type token (see internal/types) resolved to physical syntax at
// render time by the dialect.
type Cast struct {
	Inner      Expr
	TargetType string
}

func (Cast) exprNode() {}

// OrderByExpr is one ORDER BY key used inside a function call (e.g.
// STRING_AGG(... ORDER BY ...)).
type OrderByExpr struct {
	Expr      Expr
	Direction string // "ASC" | "DESC"
}

// OrderByClause is a multi-key ORDER BY clause used inside function calls.
type OrderByClause struct {
	Items []OrderByExpr
}

// WindowSpec is a logical window specification for window functions.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []OrderByExpr
}

// WindowFunction is a window function expression, e.g.
// ROW_NUMBER() OVER (PARTITION BY ... ORDER BY ...).
type WindowFunction struct {
	Name   string
	Args   []Expr
	Window WindowSpec
}

func (WindowFunction) exprNode() {}

// RowNumberOver is a convenience constructor for the common
// ROW_NUMBER() OVER (...) shape used by ranked-mode stage consolidation.
func RowNumberOver(partitionBy []Expr, orderBy []OrderByExpr) WindowFunction {
	return WindowFunction{
		Name:   "ROW_NUMBER",
		Window: WindowSpec{PartitionBy: partitionBy, OrderBy: orderBy},
	}
}

// RawSql is a raw SQL expression coming directly from metadata (a
// surrogate_expression or manual_expression that did not need full DSL
// parsing). When IsTemplate is true, Sql may contain {alias} or
// {expr:column_name} placeholders resolved against ExprBindings at render
// time; when false, Sql is rendered close to verbatim aside from an
// optional {alias} substitution.
type RawSql struct {
	Sql               string
	DefaultTableAlias string
	IsTemplate        bool
	ExprBindings      map[string]Expr
}

func (RawSql) exprNode() {}
