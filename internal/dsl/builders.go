package dsl

import "github.com/elevata-labs/elevata-core/internal/expr"

// Col is a convenience constructor mirroring dsl.py's col().
func Col(name string, tableAlias ...string) expr.ColumnRef { return expr.COL(name, tableAlias...) }

// Lit is a convenience constructor mirroring dsl.py's lit().
func Lit(value string) expr.Literal { return expr.L(value) }

// Raw is a convenience constructor mirroring dsl.py's raw(): a raw SQL
// fragment that bypasses dialect rendering. Use sparingly.
func Raw(sql string) expr.RawSql { return expr.RawSql{Sql: sql} }

// ConcatExpr mirrors dsl.py's concat_expr.
func ConcatExpr(parts []expr.Expr) expr.Expr { return expr.Concat{Parts: parts} }

// ConcatWsExpr mirrors dsl.py's concat_ws_expr: CONCAT_WS(sep, ...),
// represented as a FuncCall since the AST has no dedicated ConcatWs node.
func ConcatWsExpr(sep string, parts []expr.Expr) expr.Expr {
	args := make([]expr.Expr, 0, len(parts)+1)
	args = append(args, expr.L(sep))
	args = append(args, parts...)
	return expr.FuncCall{Name: "CONCAT_WS", Args: args}
}

// CoalesceExpr mirrors dsl.py's coalesce_expr: casts the left side to string
// first, to avoid cross-dialect type coercion errors when mixing typed
// columns with a string null-replacement literal.
func CoalesceExpr(e expr.Expr, nullValue string) expr.Expr {
	return expr.Coalesce{Parts: []expr.Expr{
		expr.Cast{Inner: e, TargetType: "string"},
		expr.L(nullValue),
	}}
}

// HashExpr mirrors dsl.py's hash_expr: a vendor-neutral hashing placeholder
// each dialect renders with its own hash function.
func HashExpr(e expr.Expr) expr.Expr { return expr.FuncCall{Name: "HASH", Args: []expr.Expr{e}} }
