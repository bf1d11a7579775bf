package logicalplan

import (
	"fmt"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/dsl"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/expr"
)

const sourceAlias = "s"

// BuildClassicSelect implements the Logical Plan Builder's classic path
// (spec section 4.6) for a TargetDataset without a query_root: resolve the
// FROM (direct source read, single upstream, or a join chain), project every
// active TargetColumn per its system role / expression kind, and compose a
// WHERE clause from the upstream SourceDataset's static/increment filters
// when reading a SourceDataset directly.
func BuildClassicSelect(cat catalog.Catalog, td catalog.TargetDataset, required RequiredColumns) (*LogicalSelect, error) {
	inputs := cat.TargetDatasetInputs(td.Key())
	if len(inputs) == 0 {
		return nil, elvterr.New(elvterr.KindCompile, "target dataset %s has no TargetDatasetInput rows", td.Key())
	}

	sel := &LogicalSelect{}

	joins := cat.TargetDatasetJoins(td.Key())
	if len(joins) > 0 {
		if err := applyJoinChain(cat, sel, joins); err != nil {
			return nil, err
		}
	} else {
		from, err := resolveSingleFrom(cat, inputs[0])
		if err != nil {
			return nil, err
		}
		sel.From = from
	}

	cols := cat.TargetColumns(td.Key())
	colInputIndex := map[string]catalog.TargetColumnInput{}
	for _, ci := range cat.TargetColumnInputs(td.Key()) {
		colInputIndex[ci.Column] = ci
	}

	for _, col := range cols {
		if !col.Active {
			continue
		}
		proj, err := projectColumn(col, colInputIndex)
		if err != nil {
			return nil, err
		}
		sel.Projections = append(sel.Projections, proj)
	}

	// Required-column pass-through: a downstream operator (aggregate, window,
	// union) may need an input column that is not among the dataset's own
	// declared columns; add a raw pass-through projection for it.
	declared := map[string]bool{}
	for _, p := range sel.Projections {
		declared[p.Alias] = true
	}
	for name := range required {
		if !declared[name] {
			sel.Projections = append(sel.Projections, Projection{Alias: name, Expr: expr.COL(name, sourceAlias)})
		}
	}

	if td.Schema == "raw" || td.Schema == "stage" {
		where, err := buildFilterWhere(cat, inputs[0])
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	return sel, nil
}

func resolveSingleFrom(cat catalog.Catalog, in catalog.TargetDatasetInput) (Source, error) {
	if in.SourceDataset != "" {
		for _, ds := range cat.SourceDatasets() {
			if ds.Key() == in.SourceDataset {
				return TableSource{Schema: ds.SchemaName, Table: ds.SourceDatasetName, Alias: sourceAlias}, nil
			}
		}
		return nil, elvterr.New(elvterr.KindMetadata, "unresolvable SourceDataset %s", in.SourceDataset)
	}
	if in.UpstreamTarget != "" {
		up, ok := cat.TargetDataset(in.UpstreamTarget)
		if !ok {
			return nil, elvterr.New(elvterr.KindMetadata, "unresolvable upstream TargetDataset %s", in.UpstreamTarget)
		}
		return TableSource{Schema: up.Schema, Table: up.Name, Alias: sourceAlias}, nil
	}
	return nil, elvterr.New(elvterr.KindMetadata, "TargetDatasetInput has neither SourceDataset nor UpstreamTarget set")
}

// applyJoinChain builds a multi-input FROM + join chain for bizcore/serving
// datasets, ordered by JoinOrder; the first join's LeftInput anchors the
// FROM clause.
func applyJoinChain(cat catalog.Catalog, sel *LogicalSelect, joins []catalog.TargetDatasetJoin) error {
	ordered := append([]catalog.TargetDatasetJoin(nil), joins...)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].JoinOrder < ordered[i].JoinOrder {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	for i, j := range ordered {
		if i == 0 {
			from, err := resolveJoinSide(cat, j.LeftInput)
			if err != nil {
				return err
			}
			sel.From = from
		}
		right, err := resolveJoinSide(cat, j.RightInput)
		if err != nil {
			return err
		}

		kind := JoinKind(j.Kind)
		if kind == JoinCross && len(j.Predicates) != 0 {
			return elvterr.New(elvterr.KindMetadata, "CROSS join at join_order=%d must have zero predicates", j.JoinOrder)
		}
		if kind != JoinCross && len(j.Predicates) == 0 {
			return elvterr.New(elvterr.KindMetadata, "non-CROSS join at join_order=%d must have at least one predicate", j.JoinOrder)
		}

		preds := make([]expr.Expr, 0, len(j.Predicates))
		for _, p := range j.Predicates {
			preds = append(preds, expr.RawSql{Sql: fmt.Sprintf("%s %s %s", p.LeftExpr, p.Operator, p.RightExpr), IsTemplate: false})
		}
		sel.Joins = append(sel.Joins, JoinClause{Kind: kind, Source: right, Predicates: preds})
	}
	return nil
}

// resolveJoinSide resolves a join endpoint identifier (a TargetDataset key)
// to a Source, aliased by the dataset's own (sanitized) name.
func resolveJoinSide(cat catalog.Catalog, datasetKey string) (Source, error) {
	td, ok := cat.TargetDataset(datasetKey)
	if !ok {
		return nil, elvterr.New(elvterr.KindMetadata, "unresolvable join input TargetDataset %s", datasetKey)
	}
	return TableSource{Schema: td.Schema, Table: td.Name, Alias: td.Name}, nil
}

// projectColumn renders one TargetColumn into a Projection, per the
// dispatch table in spec section 4.6 step 3.
func projectColumn(col catalog.TargetColumn, colInputs map[string]catalog.TargetColumnInput) (Projection, error) {
	key := col.Dataset + "." + col.Name

	switch col.SystemRole {
	case catalog.RoleSurrogateKey, catalog.RoleForeignKey, catalog.RoleRowHash:
		if col.SurrogateExpression != "" {
			e, err := dsl.Parse(col.SurrogateExpression, sourceAlias)
			if err != nil {
				return Projection{}, err
			}
			return Projection{Alias: col.Name, Expr: e}, nil
		}
	case catalog.RoleLoadRunID:
		return Projection{Alias: col.Name, Expr: expr.RawSql{Sql: "{{load_run_id}}", IsTemplate: true}}, nil
	case catalog.RoleLoadedAt:
		return Projection{Alias: col.Name, Expr: expr.RawSql{Sql: "{{load_timestamp}}", IsTemplate: true}}, nil
	}

	if col.ManualExpression != "" {
		return Projection{Alias: col.Name, Expr: expr.RawSql{Sql: col.ManualExpression, DefaultTableAlias: sourceAlias}}, nil
	}

	if ci, ok := colInputs[key]; ok {
		if ci.SourceColumn != "" {
			return Projection{Alias: col.Name, Expr: expr.COL(sourceColumnLeafName(ci.SourceColumn), sourceAlias)}, nil
		}
		if ci.UpstreamTargetColumn != "" {
			return Projection{Alias: col.Name, Expr: expr.COL(targetColumnLeafName(ci.UpstreamTargetColumn), sourceAlias)}, nil
		}
	}

	// Default fallback: same-name column on the primary input alias.
	return Projection{Alias: col.Name, Expr: expr.COL(col.Name, sourceAlias)}, nil
}

func sourceColumnLeafName(ref string) string { return leafAfterLastDot(ref) }
func targetColumnLeafName(ref string) string { return leafAfterLastDot(ref) }

func leafAfterLastDot(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// buildFilterWhere composes a WHERE clause from a SourceDataset's
// static_filter (always applied) and increment_filter (applied only when
// the dataset is incremental), qualifying bare identifiers against the
// source alias is left to the dialect's RawSql rendering (default_table_alias).
func buildFilterWhere(cat catalog.Catalog, in catalog.TargetDatasetInput) ([]expr.Expr, error) {
	if in.SourceDataset == "" {
		return nil, nil
	}
	var ds catalog.SourceDataset
	found := false
	for _, d := range cat.SourceDatasets() {
		if d.Key() == in.SourceDataset {
			ds = d
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	var where []expr.Expr
	if ds.StaticFilter != "" {
		where = append(where, expr.RawSql{Sql: ds.StaticFilter, DefaultTableAlias: sourceAlias})
	}
	if ds.Incremental && ds.IncrementFilter != "" {
		where = append(where, expr.RawSql{Sql: ds.IncrementFilter, DefaultTableAlias: sourceAlias, IsTemplate: true})
	}
	return where, nil
}
