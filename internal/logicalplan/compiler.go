package logicalplan

import (
	"fmt"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
)

const innerAlias = "u"

// CompileQueryTree compiles a TargetDataset's query_head node into a Plan,
// per spec section 4.4. It dispatches on QueryNodeType:
//   - select: delegates to BuildClassicSelect (the owning dataset's classic
//     definition).
//   - aggregate: wraps the input plan in a subquery and projects group keys
//     then measures.
//   - window: passes all input columns through, then appends window
//     function columns.
//   - union: compiles each branch to a select aligned to the declared
//     output contract, then composes UNION [ALL|DISTINCT].
func CompileQueryTree(cat catalog.Catalog, td catalog.TargetDataset, required RequiredColumns) (Plan, error) {
	if td.QueryHead == "" {
		return BuildClassicSelect(cat, td, required)
	}
	node, ok := cat.QueryNode(td.QueryHead)
	if !ok {
		return nil, elvterr.New(elvterr.KindCompile, "query_head %s not found", td.QueryHead)
	}
	return compileNode(cat, node)
}

func compileNode(cat catalog.Catalog, node catalog.QueryNode) (Plan, error) {
	switch node.Type {
	case catalog.QuerySelect:
		td, ok := cat.TargetDataset(node.Dataset)
		if !ok {
			return nil, elvterr.New(elvterr.KindCompile, "query node %s references unknown dataset %s", node.ID, node.Dataset)
		}
		return BuildClassicSelect(cat, td, nil)

	case catalog.QueryAggregate:
		return compileAggregate(cat, node)

	case catalog.QueryWindow:
		return compileWindow(cat, node)

	case catalog.QueryUnion:
		return compileUnion(cat, node)

	default:
		return nil, elvterr.New(elvterr.KindCompile, "unknown query node type %q", node.Type)
	}
}

// compileInput resolves a QueryNode.Input/Branches reference to a compiled
// Plan, propagating required columns down to the classic builder when the
// referenced node is itself a select.
func compileInput(cat catalog.Catalog, inputID string, required RequiredColumns) (Plan, error) {
	node, ok := cat.QueryNode(inputID)
	if !ok {
		return nil, elvterr.New(elvterr.KindCompile, "query node input %s not found", inputID)
	}
	if node.Type == catalog.QuerySelect {
		td, ok := cat.TargetDataset(node.Dataset)
		if !ok {
			return nil, elvterr.New(elvterr.KindCompile, "query node %s references unknown dataset %s", node.ID, node.Dataset)
		}
		return BuildClassicSelect(cat, td, required)
	}
	return compileNode(cat, node)
}

// compileAggregate implements the Aggregate operator: wraps the input plan
// in a subquery "u", projects GroupKeys then Measures. mode=="global" means
// GroupKeys are not required (a single-row aggregate over the whole input).
func compileAggregate(cat catalog.Catalog, node catalog.QueryNode) (Plan, error) {
	required := NewRequiredColumns(append(append([]string{}, node.GroupKeys...), measureArgNames(node.Measures)...)...)
	input, err := compileInput(cat, node.Input, required)
	if err != nil {
		return nil, err
	}

	outer := &LogicalSelect{From: SubquerySource{Plan: input, Alias: innerAlias}}

	if node.AggMode == "grouped" || node.AggMode == "" {
		for _, k := range node.GroupKeys {
			outer.Projections = append(outer.Projections, Projection{Alias: k, Expr: expr.COL(k, innerAlias)})
			outer.GroupBy = append(outer.GroupBy, expr.COL(k, innerAlias))
		}
	}

	for _, m := range node.Measures {
		e, err := renderMeasure(m)
		if err != nil {
			return nil, err
		}
		outer.Projections = append(outer.Projections, Projection{Alias: m.Alias, Expr: e})
	}

	return outer, nil
}

func measureArgNames(measures []catalog.AggregateMeasure) []string {
	var names []string
	for _, m := range measures {
		if m.Arg != "" && m.Arg != "*" {
			names = append(names, m.Arg)
		}
	}
	return names
}

// renderMeasure builds the Expr for one aggregate measure, covering COUNT(*),
// COUNT_DISTINCT(x), STRING_AGG(x, delim [, ORDER BY ...]), and
// SUM/MIN/MAX/AVG.
func renderMeasure(m catalog.AggregateMeasure) (expr.Expr, error) {
	switch m.Func {
	case "COUNT":
		if m.Arg == "" || m.Arg == "*" {
			return expr.FuncCall{Name: "COUNT", Args: []expr.Expr{expr.RawSql{Sql: "*"}}}, nil
		}
		return expr.FuncCall{Name: "COUNT", Args: []expr.Expr{expr.COL(m.Arg, innerAlias)}}, nil
	case "COUNT_DISTINCT":
		return expr.FuncCall{Name: "COUNT_DISTINCT", Args: []expr.Expr{expr.COL(m.Arg, innerAlias)}}, nil
	case "STRING_AGG":
		args := []expr.Expr{expr.COL(m.Arg, innerAlias), expr.L(m.Delim)}
		var orderBy expr.OrderByClause
		for _, o := range m.OrderBy {
			orderBy.Items = append(orderBy.Items, expr.OrderByExpr{Expr: expr.COL(o, innerAlias)})
		}
		if len(orderBy.Items) > 0 {
			return expr.FuncCall{Name: "STRING_AGG", Args: append(args, orderByAsExprs(orderBy)...)}, nil
		}
		return expr.FuncCall{Name: "STRING_AGG", Args: args}, nil
	case "SUM", "MIN", "MAX", "AVG":
		return expr.FuncCall{Name: m.Func, Args: []expr.Expr{expr.COL(m.Arg, innerAlias)}}, nil
	default:
		return nil, elvterr.New(elvterr.KindCompile, "unsupported aggregate measure function %q", m.Func)
	}
}

func orderByAsExprs(c expr.OrderByClause) []expr.Expr {
	out := make([]expr.Expr, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Expr
	}
	return out
}

// compileWindow implements the Window operator: pass all input columns
// through unchanged, then append window function columns with their
// PARTITION/ORDER BY. Aliases must not collide with the input's own columns.
func compileWindow(cat catalog.Catalog, node catalog.QueryNode) (Plan, error) {
	required := NewRequiredColumns()
	for _, w := range node.WindowFns {
		for _, a := range w.PartitionBy {
			required[a] = true
		}
		for _, a := range w.OrderBy {
			required[a] = true
		}
		for _, a := range w.Args {
			required[a] = true
		}
	}

	input, err := compileInput(cat, node.Input, required)
	if err != nil {
		return nil, err
	}

	outer := &LogicalSelect{From: SubquerySource{Plan: input, Alias: innerAlias}}

	passthrough := inputProjectionAliases(input)
	outer.Projections = append(outer.Projections, passthrough...)

	seen := map[string]bool{}
	for _, p := range passthrough {
		seen[p.Alias] = true
	}

	for _, w := range node.WindowFns {
		if seen[w.Alias] {
			return nil, elvterr.New(elvterr.KindCompile, "window function alias %q collides with an input column", w.Alias)
		}
		seen[w.Alias] = true

		args := make([]expr.Expr, len(w.Args))
		for i, a := range w.Args {
			args[i] = expr.COL(a, innerAlias)
		}
		partitionBy := make([]expr.Expr, len(w.PartitionBy))
		for i, a := range w.PartitionBy {
			partitionBy[i] = expr.COL(a, innerAlias)
		}
		var orderBy []expr.OrderByExpr
		for _, a := range w.OrderBy {
			orderBy = append(orderBy, expr.OrderByExpr{Expr: expr.COL(a, innerAlias), Direction: "ASC"})
		}

		wf := expr.WindowFunction{
			Name: w.Func,
			Args: args,
			Window: expr.WindowSpec{
				PartitionBy: partitionBy,
				OrderBy:     orderBy,
			},
		}
		outer.Projections = append(outer.Projections, Projection{Alias: w.Alias, Expr: wf})
	}

	return outer, nil
}

// inputProjectionAliases extracts the output column aliases of a compiled
// Plan, so a window/union stage can pass them through as simple ColumnRefs
// against the wrapping subquery alias rather than re-deriving each
// expression.
func inputProjectionAliases(p Plan) []Projection {
	switch n := p.(type) {
	case *LogicalSelect:
		out := make([]Projection, len(n.Projections))
		for i, proj := range n.Projections {
			out[i] = Projection{Alias: proj.Alias, Expr: expr.COL(proj.Alias, innerAlias)}
		}
		return out
	case *LogicalUnion:
		out := make([]Projection, len(n.OutputColumns))
		for i, col := range n.OutputColumns {
			out[i] = Projection{Alias: col, Expr: expr.COL(col, innerAlias)}
		}
		return out
	default:
		return nil
	}
}

// compileUnion implements the Union operator: compile each branch into a
// select aligned to the declared output contract (OutputColumns ×
// BranchMappings), then compose UNION [ALL|DISTINCT].
func compileUnion(cat catalog.Catalog, node catalog.QueryNode) (Plan, error) {
	if len(node.OutputColumns) == 0 {
		return nil, elvterr.New(elvterr.KindCompile, "union query node %s has no output_columns contract", node.ID)
	}

	branches := make([]Plan, 0, len(node.Branches))
	for _, branchID := range node.Branches {
		mapping, ok := node.BranchMappings[branchID]
		if !ok {
			return nil, elvterr.New(elvterr.KindCompile, "union query node %s has no branch_mapping for branch %s", node.ID, branchID)
		}

		required := NewRequiredColumns()
		for _, expr := range mapping {
			required[expr] = true
		}

		branchPlan, err := compileInput(cat, branchID, required)
		if err != nil {
			return nil, fmt.Errorf("compiling union branch %s: %w", branchID, err)
		}

		aligned := &LogicalSelect{From: SubquerySource{Plan: branchPlan, Alias: innerAlias}}
		for _, outCol := range node.OutputColumns {
			srcExpr, ok := mapping[outCol]
			if !ok {
				return nil, elvterr.New(elvterr.KindCompile, "union branch %s missing mapping for output column %q", branchID, outCol)
			}
			aligned.Projections = append(aligned.Projections, Projection{Alias: outCol, Expr: expr.COL(srcExpr, innerAlias)})
		}
		branches = append(branches, aligned)
	}

	return &LogicalUnion{
		Branches:      branches,
		UnionAll:      node.UnionAll,
		OutputColumns: node.OutputColumns,
	}, nil
}
