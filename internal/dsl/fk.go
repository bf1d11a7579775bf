package dsl

import "github.com/elevata-labs/elevata-core/internal/expr"

// KeyComponent pairs a parent business-key column name with the
// already-parsed child-side expression that should stand in for it when
// rewriting the parent's surrogate-key expression into an FK expression.
// Mirrors catalog.KeyComponent, kept expr-typed here so this package does
// not need to depend on internal/catalog.
type KeyComponent struct {
	ParentColumn string
	ChildExpr    expr.Expr
}

// BuildSurrogateFkExpression rewrites a parent dataset's surrogate-key
// expression tree into the FK column's expression: for every KeyComponent,
// the first occurrence (left to right, depth first) of a ColumnRef naming
// ParentColumn is left untouched (so the FK expression still documents which
// parent business key it binds), and every subsequent occurrence is replaced
// by ChildExpr (the corresponding stage-side expression on the child
// dataset). This lets a parent's hash recipe be reproduced on the child side
// using the child's own column values wherever the parent's SK formula
// referenced the shared business key more than once (e.g. once directly and
// once inside a derived comparison), while the first reference continues to
// read as "this is the parent key being joined".
func BuildSurrogateFkExpression(parentSk expr.Expr, components []KeyComponent) expr.Expr {
	seen := map[string]int{}
	childByCol := map[string]expr.Expr{}
	for _, c := range components {
		childByCol[c.ParentColumn] = c.ChildExpr
	}
	return rewrite(parentSk, childByCol, seen)
}

func rewrite(e expr.Expr, childByCol map[string]expr.Expr, seen map[string]int) expr.Expr {
	switch n := e.(type) {
	case expr.ColumnRef:
		child, tracked := childByCol[n.ColumnName]
		if !tracked {
			return n
		}
		seen[n.ColumnName]++
		if seen[n.ColumnName] == 1 {
			return n
		}
		return child

	case expr.FuncCall:
		return expr.FuncCall{Name: n.Name, Args: rewriteAll(n.Args, childByCol, seen)}

	case expr.Concat:
		return expr.Concat{Parts: rewriteAll(n.Parts, childByCol, seen)}

	case expr.Coalesce:
		return expr.Coalesce{Parts: rewriteAll(n.Parts, childByCol, seen)}

	case expr.Cast:
		return expr.Cast{Inner: rewrite(n.Inner, childByCol, seen), TargetType: n.TargetType}

	case expr.WindowFunction:
		return expr.WindowFunction{
			Name: n.Name,
			Args: rewriteAll(n.Args, childByCol, seen),
			Window: expr.WindowSpec{
				PartitionBy: rewriteAll(n.Window.PartitionBy, childByCol, seen),
				OrderBy:     n.Window.OrderBy,
			},
		}

	default:
		return e
	}
}

func rewriteAll(es []expr.Expr, childByCol map[string]expr.Expr, seen map[string]int) []expr.Expr {
	out := make([]expr.Expr, len(es))
	for i, e := range es {
		out[i] = rewrite(e, childByCol, seen)
	}
	return out
}
