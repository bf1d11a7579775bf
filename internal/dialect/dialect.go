// Package dialect implements the SQL Dialect Layer: a single Dialect
// interface plus capability flags (no inheritance, per spec section 9's
// design note "Runtime polymorphism of dialects"), with the shared DDL/DML
// shapes implemented once as package-level helper functions that accept the
// interface - the same "helper operates on an interface" idiom sqldef uses
// for its Generator (schema/generator.go) and Database abstraction.
//
// Grounded on original_source/core/metadata/rendering/dialects/base.py
// (shared defaults) and duckdb.py (concrete dialect), generalized to the
// other six engines per spec section 4.7's "dialect-specific rules to
// preserve" table.
package dialect

import (
	"fmt"

	"github.com/elevata-labs/elevata-core/internal/naming"
	"github.com/elevata-labs/elevata-core/internal/types"
)

// ColumnDef is a physical column definition used by the DDL helpers.
type ColumnDef struct {
	Name string
	Type types.Type
}

// Dialect is the polymorphic per-engine contract. Capability flags
// (SupportsMerge/SupportsAlterColumnType/SupportsDeleteDetection) let the
// shared helpers choose a fallback rendering instead of branching on a
// dialect name.
type Dialect interface {
	Name() string

	SupportsMerge() bool
	SupportsAlterColumnType() bool
	SupportsDeleteDetection() bool

	QuoteIdent(name string) string
	RenderTableIdentifier(schema, table string) string
	RenderPhysicalType(t types.Type) string

	// ConcatExpr renders string concatenation of already-rendered SQL
	// fragments. (BigQuery's ARRAY_TO_STRING([CAST(...AS STRING),...], sep)
	// composition applies to ConcatWsExpr only; its ConcatExpr renders
	// CONCAT(...).)
	ConcatExpr(parts []string) string
	// ConcatWsExpr renders CONCAT_WS(sep, ...) given already-rendered parts.
	ConcatWsExpr(sepSQL string, parts []string) string
	HashExpr(innerSQL string) string
	CastExpr(innerSQL, targetType string) string
	TruncateStringExpr(innerSQL string, length int) string
	Literal(v any) string
	ParamPlaceholder(idx int) string

	// RenameColumnSql lets Databricks (and any future engine with an
	// unusual RENAME COLUMN precondition) override the generic ALTER TABLE
	// ... RENAME COLUMN shape.
	RenameColumnSql(schema, table, oldName, newName string) string

	// DeleteDetectionSql lets MSSQL/Fabric override the generic
	// "DELETE FROM t WHERE ..." shape with "DELETE t FROM ... AS t".
	DeleteDetectionSql(targetSchema, targetTable, stageSchema, stageTable string, joinPredicates []string, scopeFilter string) string
}

// spec holds the small set of per-dialect knobs that differ only in data,
// not in algorithm shape; the seven concrete dialects in dialects.go are all
// instances of generic parameterized by one of these.
type spec struct {
	name                    string
	identOpen, identClose   byte
	identCase               naming.DialectCase
	typeKey                 string
	supportsMerge           bool
	supportsAlterColumnType bool
	supportsDeleteDetection bool

	concatExpr      func(parts []string) string
	concatWsExpr    func(sepSQL string, parts []string) string
	hashExpr        func(innerSQL string) string
	castExpr        func(innerSQL, targetType string) string
	truncateStrExpr func(innerSQL string, length int) string
	literal         func(v any) string
	paramPlaceholder func(idx int) string
	renameColumnSql func(g *generic, schema, table, oldName, newName string) string
	deleteDetectionSql func(g *generic, targetSchema, targetTable, stageSchema, stageTable string, joinPredicates []string, scopeFilter string) string
}

type generic struct{ s spec }

func (g *generic) Name() string                    { return g.s.name }
func (g *generic) SupportsMerge() bool              { return g.s.supportsMerge }
func (g *generic) SupportsAlterColumnType() bool    { return g.s.supportsAlterColumnType }
func (g *generic) SupportsDeleteDetection() bool    { return g.s.supportsDeleteDetection }

func (g *generic) QuoteIdent(name string) string {
	folded := naming.ToDialectCase(name, g.s.identCase)
	return fmt.Sprintf("%c%s%c", g.s.identOpen, folded, g.s.identClose)
}

func (g *generic) RenderTableIdentifier(schema, table string) string {
	return g.QuoteIdent(schema) + "." + g.QuoteIdent(table)
}

func (g *generic) RenderPhysicalType(t types.Type) string {
	return types.RenderPhysical(g.s.typeKey, t)
}

func (g *generic) ConcatExpr(parts []string) string   { return g.s.concatExpr(parts) }
func (g *generic) ConcatWsExpr(sep string, parts []string) string {
	return g.s.concatWsExpr(sep, parts)
}
func (g *generic) HashExpr(inner string) string              { return g.s.hashExpr(inner) }
func (g *generic) CastExpr(inner, target string) string       { return g.s.castExpr(inner, target) }
func (g *generic) TruncateStringExpr(inner string, n int) string {
	return g.s.truncateStrExpr(inner, n)
}
func (g *generic) Literal(v any) string           { return g.s.literal(v) }
func (g *generic) ParamPlaceholder(idx int) string { return g.s.paramPlaceholder(idx) }

func (g *generic) RenameColumnSql(schema, table, oldName, newName string) string {
	if g.s.renameColumnSql != nil {
		return g.s.renameColumnSql(g, schema, table, oldName, newName)
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;",
		g.RenderTableIdentifier(schema, table), g.QuoteIdent(oldName), g.QuoteIdent(newName))
}

func (g *generic) DeleteDetectionSql(targetSchema, targetTable, stageSchema, stageTable string, joinPredicates []string, scopeFilter string) string {
	if g.s.deleteDetectionSql != nil {
		return g.s.deleteDetectionSql(g, targetSchema, targetTable, stageSchema, stageTable, joinPredicates, scopeFilter)
	}
	return defaultDeleteDetectionSql(g, targetSchema, targetTable, stageSchema, stageTable, joinPredicates, scopeFilter)
}
