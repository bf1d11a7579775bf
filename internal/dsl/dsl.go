// Package dsl implements the surrogate/FK expression DSL parser: a small,
// fixed grammar (HASH256, CONCAT, CONCAT_WS, COALESCE, COL, string literals,
// and {expr:col} placeholders) that compiles directly into the expr.Expr
// AST, used for TargetColumn.SurrogateExpression and FK expression
// rewriting.
//
// Grounded on original_source/core/metadata/rendering/dsl.py's
// parse_surrogate_dsl, translated from Python string-prefix matching into an
// equivalent Go recursive-descent parser over the same grammar.
package dsl

import (
	"regexp"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
)

var placeholderRe = regexp.MustCompile(`^\{expr:([A-Za-z0-9_]+)\}$`)

// Parse parses a surrogate-key DSL expression into an expr.Expr tree.
// tableAlias qualifies any COL(...)/{expr:...} references produced, e.g.
// "s" for the logical plan's source alias.
func Parse(source string, tableAlias string) (expr.Expr, error) {
	d := strings.TrimSpace(source)

	if m := placeholderRe.FindStringSubmatch(d); m != nil {
		return expr.COL(m[1], tableAlias), nil
	}

	if isQuoted(d, '\'') || isQuoted(d, '"') {
		return expr.L(d[1 : len(d)-1]), nil
	}

	if upperHasPrefixSuffix(d, "COL(") {
		inner := strings.TrimSpace(d[len("COL(") : len(d)-1])
		inner = stripIdentQuotes(inner)
		return expr.COL(inner, tableAlias), nil
	}

	if upperHasPrefixSuffix(d, "HASH256(") {
		inner := strings.TrimSpace(d[len("HASH256(") : len(d)-1])
		innerExpr, err := Parse(inner, tableAlias)
		if err != nil {
			return nil, err
		}
		return expr.FuncCall{Name: "HASH256", Args: []expr.Expr{innerExpr}}, nil
	}

	if upperHasPrefixSuffix(d, "CONCAT_WS(") {
		inner := d[len("CONCAT_WS(") : len(d)-1]
		firstArg, rest := splitFirstArg(inner)
		sep, err := Parse(strings.TrimSpace(firstArg), tableAlias)
		if err != nil {
			return nil, err
		}
		parts := splitArgs(rest)
		exprs := make([]expr.Expr, 0, len(parts)+1)
		exprs = append(exprs, sep)
		for _, p := range parts {
			e, err := Parse(p, tableAlias)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return expr.FuncCall{Name: "CONCAT_WS", Args: exprs}, nil
	}

	if upperHasPrefixSuffix(d, "CONCAT(") {
		inner := d[len("CONCAT(") : len(d)-1]
		parts := splitArgs(inner)
		exprs := make([]expr.Expr, 0, len(parts))
		for _, p := range parts {
			e, err := Parse(p, tableAlias)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return expr.Concat{Parts: exprs}, nil
	}

	if upperHasPrefixSuffix(d, "COALESCE(") {
		inner := d[len("COALESCE(") : len(d)-1]
		parts := splitArgs(inner)
		if len(parts) != 2 {
			return nil, elvterr.New(elvterr.KindCompile, "DslParseError: COALESCE must have exactly 2 arguments: %q", source)
		}
		left, err := Parse(parts[0], tableAlias)
		if err != nil {
			return nil, err
		}
		right, err := Parse(parts[1], tableAlias)
		if err != nil {
			return nil, err
		}
		// Cast left to string to avoid cross-dialect type coercion errors
		// (e.g. an INT column compared against a 'null_replaced' literal).
		left = expr.Cast{Inner: left, TargetType: "string"}
		return expr.Coalesce{Parts: []expr.Expr{left, right}}, nil
	}

	return nil, elvterr.New(elvterr.KindCompile, "DslParseError: unsupported DSL expression: %q", source)
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

func upperHasPrefixSuffix(s, prefix string) bool {
	return len(s) >= len(prefix)+1 && strings.HasPrefix(strings.ToUpper(s), prefix) && strings.HasSuffix(s, ")")
}

func stripIdentQuotes(inner string) string {
	if len(inner) >= 2 {
		pairs := [][2]byte{{'"', '"'}, {'\'', '\''}, {'`', '`'}, {'[', ']'}}
		for _, p := range pairs {
			if inner[0] == p[0] && inner[len(inner)-1] == p[1] {
				return strings.TrimSpace(inner[1 : len(inner)-1])
			}
		}
	}
	return inner
}

// splitArgs splits a comma-separated argument list at top-level commas
// (ignoring commas nested inside parentheses).
func splitArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}

// splitFirstArg splits "arg1, arg2, arg3" into ("arg1", "arg2, arg3") at the
// first top-level comma.
func splitFirstArg(s string) (first, rest string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}
