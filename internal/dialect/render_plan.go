package dialect

import (
	"fmt"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
	"github.com/elevata-labs/elevata-core/internal/logicalplan"
)

// RenderPlan renders a logicalplan.Plan into a full SQL SELECT statement.
func RenderPlan(d Dialect, p logicalplan.Plan) (string, error) {
	switch n := p.(type) {
	case *logicalplan.LogicalSelect:
		return renderSelect(d, n)
	case *logicalplan.LogicalUnion:
		return renderUnion(d, n)
	default:
		return "", elvterr.New(elvterr.KindDialect, "unrenderable plan node %T", p)
	}
}

func renderSource(d Dialect, s logicalplan.Source) (string, error) {
	switch src := s.(type) {
	case logicalplan.TableSource:
		fqn := d.RenderTableIdentifier(src.Schema, src.Table)
		if src.Alias != "" {
			return fmt.Sprintf("%s AS %s", fqn, d.QuoteIdent(src.Alias)), nil
		}
		return fqn, nil
	case logicalplan.SubquerySource:
		inner, err := RenderPlan(d, src.Plan)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(\n%s\n) AS %s", indent(inner), d.QuoteIdent(src.Alias)), nil
	default:
		return "", elvterr.New(elvterr.KindDialect, "unrenderable source node %T", s)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func renderSelect(d Dialect, n *logicalplan.LogicalSelect) (string, error) {
	var b strings.Builder

	b.WriteString("SELECT ")
	if n.Distinct {
		b.WriteString("DISTINCT ")
	}

	if len(n.Projections) == 0 {
		return "", elvterr.New(elvterr.KindDialect, "logical select has no projections")
	}
	projParts := make([]string, len(n.Projections))
	for i, p := range n.Projections {
		exprSQL, err := RenderExpr(d, p.Expr)
		if err != nil {
			return "", err
		}
		if p.Alias != "" {
			projParts[i] = fmt.Sprintf("%s AS %s", exprSQL, d.QuoteIdent(p.Alias))
		} else {
			projParts[i] = exprSQL
		}
	}
	b.WriteString(strings.Join(projParts, ", "))

	if n.From != nil {
		fromSQL, err := renderSource(d, n.From)
		if err != nil {
			return "", err
		}
		b.WriteString("\nFROM " + fromSQL)
	}

	for _, j := range n.Joins {
		joinSQL, err := renderJoin(d, j)
		if err != nil {
			return "", err
		}
		b.WriteString("\n" + joinSQL)
	}

	if len(n.Where) > 0 {
		whereSQL, err := renderAndGroup(d, n.Where)
		if err != nil {
			return "", err
		}
		b.WriteString("\nWHERE " + whereSQL)
	}

	if len(n.GroupBy) > 0 {
		groupParts, err := renderAll(d, n.GroupBy)
		if err != nil {
			return "", err
		}
		b.WriteString("\nGROUP BY " + strings.Join(groupParts, ", "))
	}

	if len(n.OrderBy) > 0 {
		orderParts := make([]string, len(n.OrderBy))
		for i, ob := range n.OrderBy {
			s, err := RenderExpr(d, ob.Expr)
			if err != nil {
				return "", err
			}
			dir := ob.Direction
			if dir == "" {
				dir = "ASC"
			}
			orderParts[i] = s + " " + dir
		}
		b.WriteString("\nORDER BY " + strings.Join(orderParts, ", "))
	}

	return b.String(), nil
}

func renderJoin(d Dialect, j logicalplan.JoinClause) (string, error) {
	var kw string
	switch j.Kind {
	case logicalplan.JoinInner:
		kw = "INNER JOIN"
	case logicalplan.JoinLeft:
		kw = "LEFT JOIN"
	case logicalplan.JoinCross:
		kw = "CROSS JOIN"
	default:
		return "", elvterr.New(elvterr.KindDialect, "unknown join kind %q", j.Kind)
	}

	srcSQL, err := renderSource(d, j.Source)
	if err != nil {
		return "", err
	}

	if j.Kind == logicalplan.JoinCross {
		return fmt.Sprintf("%s %s", kw, srcSQL), nil
	}

	onSQL, err := renderAndGroup(d, j.Predicates)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s ON %s", kw, srcSQL, onSQL), nil
}

func renderAndGroup(d Dialect, preds []expr.Expr) (string, error) {
	parts, err := renderAll(d, preds)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "\n  AND "), nil
}

func renderUnion(d Dialect, n *logicalplan.LogicalUnion) (string, error) {
	if len(n.Branches) == 0 {
		return "", elvterr.New(elvterr.KindDialect, "logical union has no branches")
	}
	kw := "UNION"
	if n.UnionAll {
		kw = "UNION ALL"
	}

	branchSQLs := make([]string, len(n.Branches))
	for i, br := range n.Branches {
		s, err := RenderPlan(d, br)
		if err != nil {
			return "", err
		}
		branchSQLs[i] = s
	}
	return strings.Join(branchSQLs, "\n"+kw+"\n"), nil
}
