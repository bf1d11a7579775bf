package dsl

import (
	"fmt"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
)

// Render is Parse's inverse: it serializes an expr.Expr tree back into DSL
// source text, for the FK-rewrite path where BuildSurrogateFkExpression
// produces an Expr that must be stored as TargetColumn.SurrogateExpression
// (a DSL string, reparsed by the logical plan builder at render time).
// It covers exactly the node shapes dsl.Parse ever produces: Literal,
// ColumnRef, HASH256/CONCAT_WS FuncCalls, the Concat node CONCAT parses to,
// Coalesce, and the string
// Cast that COALESCE's left side is always wrapped in.
func Render(e expr.Expr) (string, error) {
	switch n := e.(type) {
	case expr.Literal:
		return fmt.Sprintf("'%v'", n.Value), nil

	case expr.ColumnRef:
		return fmt.Sprintf("COL(%s)", n.ColumnName), nil

	case expr.FuncCall:
		switch n.Name {
		case "HASH256":
			if len(n.Args) != 1 {
				return "", elvterr.New(elvterr.KindCompile, "DslRenderError: HASH256 takes exactly 1 argument")
			}
			inner, err := Render(n.Args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("HASH256(%s)", inner), nil
		case "CONCAT_WS":
			if len(n.Args) < 1 {
				return "", elvterr.New(elvterr.KindCompile, "DslRenderError: CONCAT_WS takes at least 1 argument")
			}
			parts, err := renderAll(n.Args)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("CONCAT_WS(%s)", strings.Join(parts, ", ")), nil
		default:
			return "", elvterr.New(elvterr.KindCompile, "DslRenderError: unsupported function %q", n.Name)
		}

	case expr.Concat:
		parts, err := renderAll(n.Parts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CONCAT(%s)", strings.Join(parts, ", ")), nil

	case expr.Coalesce:
		if len(n.Parts) != 2 {
			return "", elvterr.New(elvterr.KindCompile, "DslRenderError: COALESCE must have exactly 2 arguments")
		}
		// Parse always wraps COALESCE's left side in Cast{TargetType:"string"}
		// on the way in; unwrap it here so re-parsing the rendered text
		// reapplies the same cast instead of nesting it twice.
		left := n.Parts[0]
		if c, ok := left.(expr.Cast); ok && c.TargetType == "string" {
			left = c.Inner
		}
		leftSrc, err := Render(left)
		if err != nil {
			return "", err
		}
		rightSrc, err := Render(n.Parts[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("COALESCE(%s, %s)", leftSrc, rightSrc), nil

	case expr.Cast:
		// Not produced by DSL source standalone; render through to the inner
		// expression since the DSL grammar has no explicit CAST syntax.
		return Render(n.Inner)

	default:
		return "", elvterr.New(elvterr.KindCompile, "DslRenderError: unsupported expression node %T", e)
	}
}

func renderAll(es []expr.Expr) ([]string, error) {
	out := make([]string, len(es))
	for i, e := range es {
		s, err := Render(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
