// Package logicalplan builds the dialect-neutral logical query plan for a
// TargetDataset: either the "classic path" (derived straight from the
// dataset's declared columns/inputs/joins) or the query-tree path
// (select/aggregate/window/union nodes). Dialects render a Plan, never the
// catalog directly.
//
// Grounded on spec sections 4.4 and 4.6; structurally mirrors sqldef's
// schema.DDL closed-interface idiom (one marker method per node kind) seen
// in schema/schema.go.
package logicalplan

import "github.com/elevata-labs/elevata-core/internal/expr"

// Plan is implemented by every logical-plan node a dialect can render at the
// top level: LogicalSelect and LogicalUnion.
type Plan interface {
	planNode()
}

// Source is implemented by every FROM-clause source: TableSource and
// SubquerySource.
type Source interface {
	sourceNode()
}

// TableSource names a physical table to read from.
type TableSource struct {
	Schema string
	Table  string
	Alias  string
}

func (TableSource) sourceNode() {}

// SubquerySource wraps a nested Plan as a FROM-clause source.
type SubquerySource struct {
	Plan  Plan
	Alias string
}

func (SubquerySource) sourceNode() {}

// JoinKind mirrors catalog.JoinKind without importing the catalog package,
// keeping logicalplan a leaf the dialect layer can render without pulling in
// metadata-model types.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinCross JoinKind = "cross"
)

// JoinClause is one entry of a LogicalSelect's join chain.
type JoinClause struct {
	Kind       JoinKind
	Source     Source
	Predicates []expr.Expr // ANDed together; empty for JoinCross
}

// Projection is one SELECT-list entry.
type Projection struct {
	Alias string
	Expr  expr.Expr
}

// OrderItem is one ORDER BY key of the outer select.
type OrderItem struct {
	Expr      expr.Expr
	Direction string // "ASC" | "DESC"
}

// LogicalSelect is a single SELECT (with optional FROM, joins, WHERE,
// GROUP BY, ORDER BY). Aggregate/window query nodes compile down to a
// LogicalSelect wrapping an inner LogicalSelect via SubquerySource.
type LogicalSelect struct {
	From        Source // nil for a values-only/derived select
	Joins       []JoinClause
	Projections []Projection
	Where       []expr.Expr // ANDed together
	GroupBy     []expr.Expr
	OrderBy     []OrderItem
	Distinct    bool
}

func (*LogicalSelect) planNode() {}

// LogicalUnion composes N branch selects with UNION [ALL|DISTINCT],
// projected to a shared output column contract.
type LogicalUnion struct {
	Branches      []Plan
	UnionAll      bool
	OutputColumns []string // final column order, shared across branches
}

func (*LogicalUnion) planNode() {}

// RequiredColumns is a read-only set used to propagate "please also project
// this column" requests from a downstream operator (aggregate/window/union)
// down into an upstream LogicalSelect that otherwise would not have emitted
// it, per spec section 4.4's required-column propagation note.
type RequiredColumns map[string]bool

// NewRequiredColumns builds a RequiredColumns set from a name list.
func NewRequiredColumns(names ...string) RequiredColumns {
	rc := make(RequiredColumns, len(names))
	for _, n := range names {
		rc[n] = true
	}
	return rc
}
