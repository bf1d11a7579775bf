package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
)

// RenderExpr renders an expr.Expr tree into dialect-specific SQL text.
func RenderExpr(d Dialect, e expr.Expr) (string, error) {
	switch n := e.(type) {
	case expr.Literal:
		return d.Literal(n.Value), nil

	case expr.ColumnRef:
		if n.TableAlias == "" {
			return d.QuoteIdent(n.ColumnName), nil
		}
		return fmt.Sprintf("%s.%s", d.QuoteIdent(n.TableAlias), d.QuoteIdent(n.ColumnName)), nil

	case expr.Concat:
		parts, err := renderAll(d, n.Parts)
		if err != nil {
			return "", err
		}
		return d.ConcatExpr(parts), nil

	case expr.Coalesce:
		parts, err := renderAll(d, n.Parts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("COALESCE(%s)", strings.Join(parts, ", ")), nil

	case expr.Cast:
		inner, err := RenderExpr(d, n.Inner)
		if err != nil {
			return "", err
		}
		return d.CastExpr(inner, n.TargetType), nil

	case expr.FuncCall:
		return renderFuncCall(d, n)

	case expr.WindowFunction:
		return renderWindowFunction(d, n)

	case expr.RawSql:
		return renderRawSql(d, n)

	default:
		return "", elvterr.New(elvterr.KindDialect, "unrenderable expression node %T", e)
	}
}

func renderAll(d Dialect, es []expr.Expr) ([]string, error) {
	out := make([]string, len(es))
	for i, e := range es {
		s, err := RenderExpr(d, e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// renderFuncCall dispatches the small set of function names the DSL and
// query-tree compiler can produce. HASH256/HASH route to the dialect's hash
// primitive; CONCAT_WS routes to ConcatWsExpr (which BigQuery rewrites to
// its ARRAY_TO_STRING shape); everything else renders as a literal SQL call.
func renderFuncCall(d Dialect, n expr.FuncCall) (string, error) {
	args, err := renderAll(d, n.Args)
	if err != nil {
		return "", err
	}

	switch n.Name {
	case "HASH256", "HASH":
		if len(args) != 1 {
			return "", elvterr.New(elvterr.KindDialect, "%s expects exactly one argument", n.Name)
		}
		return d.HashExpr(args[0]), nil
	case "CONCAT_WS":
		if len(args) < 1 {
			return "", elvterr.New(elvterr.KindDialect, "CONCAT_WS expects a separator argument")
		}
		return d.ConcatWsExpr(args[0], args[1:]), nil
	case "COUNT_DISTINCT":
		return fmt.Sprintf("COUNT(DISTINCT %s)", strings.Join(args, ", ")), nil
	case "STRING_AGG":
		if len(args) < 2 {
			return "", elvterr.New(elvterr.KindDialect, "STRING_AGG expects (expr, delimiter[, order_by...])")
		}
		base := fmt.Sprintf("STRING_AGG(%s, %s", args[0], args[1])
		if len(args) > 2 {
			base += " ORDER BY " + strings.Join(args[2:], ", ")
		}
		return base + ")", nil
	default:
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", ")), nil
	}
}

func renderWindowFunction(d Dialect, n expr.WindowFunction) (string, error) {
	args, err := renderAll(d, n.Args)
	if err != nil {
		return "", err
	}
	call := fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))

	var parts []string
	if len(n.Window.PartitionBy) > 0 {
		pb, err := renderAll(d, n.Window.PartitionBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+strings.Join(pb, ", "))
	}
	if len(n.Window.OrderBy) > 0 {
		obStrs := make([]string, len(n.Window.OrderBy))
		for i, ob := range n.Window.OrderBy {
			s, err := RenderExpr(d, ob.Expr)
			if err != nil {
				return "", err
			}
			dir := ob.Direction
			if dir == "" {
				dir = "ASC"
			}
			obStrs[i] = s + " " + dir
		}
		parts = append(parts, "ORDER BY "+strings.Join(obStrs, ", "))
	}

	return fmt.Sprintf("%s OVER (%s)", call, strings.Join(parts, " ")), nil
}

// renderRawSql renders a metadata-authored raw SQL fragment. {alias}
// substitutes DefaultTableAlias in either case; when IsTemplate is set,
// {expr:name} also resolves against ExprBindings; apart from that the
// fragment renders verbatim.
func renderRawSql(d Dialect, n expr.RawSql) (string, error) {
	sql := n.Sql
	if n.DefaultTableAlias != "" {
		sql = strings.ReplaceAll(sql, "{alias}", n.DefaultTableAlias)
	}
	if !n.IsTemplate {
		return sql, nil
	}
	for name, bound := range n.ExprBindings {
		rendered, err := RenderExpr(d, bound)
		if err != nil {
			return "", err
		}
		sql = strings.ReplaceAll(sql, "{expr:"+name+"}", rendered)
	}
	return sql, nil
}

// renderLiteralDefault is the shared fallback literal renderer most
// dialects use directly: strings are single-quoted with embedded quotes
// doubled, numbers/bools render verbatim, nil renders NULL.
func renderLiteralDefault(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
