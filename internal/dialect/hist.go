package dialect

import (
	"fmt"
	"strings"
)

// RenderHistChangedUpdateSql closes changed rows in a *_hist table (SCD2
// step 1): match on the rawcore surrogate key, detect a change via
// row_hash, set version_ended_at/version_state/load_run_id.
func RenderHistChangedUpdateSql(d Dialect, schemaName, histTable, rawcoreTable string) string {
	histTbl := d.RenderTableIdentifier(schemaName, histTable)
	rcTbl := d.RenderTableIdentifier(schemaName, rawcoreTable)
	skName := d.QuoteIdent(rawcoreTable + "_key")
	rowHash := d.QuoteIdent("row_hash")

	return fmt.Sprintf(
		"UPDATE %s AS h\nSET\n  version_ended_at = {{load_timestamp}},\n  version_state    = 'changed',\n  load_run_id      = {{load_run_id}}\nWHERE h.version_ended_at IS NULL\n  AND EXISTS (\n    SELECT 1\n    FROM %s AS r\n    WHERE r.%s = h.%s\n      AND r.%s <> h.%s\n  );",
		histTbl, rcTbl, skName, skName, rowHash, rowHash)
}

// RenderHistDeleteSql marks deleted business keys in a *_hist table (SCD2
// step 2): a key present as an active hist row but absent from rawcore is
// closed and marked deleted.
func RenderHistDeleteSql(d Dialect, schemaName, histTable, rawcoreTable string) string {
	histTbl := d.RenderTableIdentifier(schemaName, histTable)
	rcTbl := d.RenderTableIdentifier(schemaName, rawcoreTable)
	skName := d.QuoteIdent(rawcoreTable + "_key")

	return fmt.Sprintf(
		"UPDATE %s AS h\nSET\n  version_ended_at = {{load_timestamp}},\n  version_state    = 'deleted',\n  load_run_id      = {{load_run_id}}\nWHERE h.version_ended_at IS NULL\n  AND NOT EXISTS (\n    SELECT 1\n    FROM %s AS r\n    WHERE r.%s = h.%s\n  );",
		histTbl, rcTbl, skName, skName)
}

// HistInsertParams carries the semantic ingredients for one guarded
// INSERT...SELECT step of the SCD2 pipeline (step 3 or 4).
type HistInsertParams struct {
	HistSchema, HistTable   string
	HistColumns             []string
	SourceSchema, SourceTable, SourceAlias string
	SelectExprsSQL          []string
	ExistsSchema, ExistsTable, ExistsAlias string
	ExistsPredicates        []string
	ExistsNegated           bool
}

// RenderHistInsertStatement renders an INSERT...SELECT guarded by an
// (NOT) EXISTS subquery.
func RenderHistInsertStatement(d Dialect, p HistInsertParams) string {
	histFqn := d.RenderTableIdentifier(p.HistSchema, p.HistTable)
	srcFqn := d.RenderTableIdentifier(p.SourceSchema, p.SourceTable)
	exFqn := d.RenderTableIdentifier(p.ExistsSchema, p.ExistsTable)

	existsKw := "EXISTS"
	if p.ExistsNegated {
		existsKw = "NOT EXISTS"
	}

	var preds []string
	for _, pr := range p.ExistsPredicates {
		if strings.TrimSpace(pr) != "" {
			preds = append(preds, pr)
		}
	}
	predSQL := "1=1"
	if len(preds) > 0 {
		predSQL = strings.Join(preds, "\n    AND ")
	}

	quotedCols := make([]string, len(p.HistColumns))
	for i, c := range p.HistColumns {
		quotedCols[i] = d.QuoteIdent(c)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (\n  %s\n)\nSELECT\n  %s\nFROM %s AS %s\nWHERE %s (\n  SELECT 1\n  FROM %s AS %s\n  WHERE %s\n);",
		histFqn, strings.Join(quotedCols, ",\n  "),
		strings.Join(p.SelectExprsSQL, ",\n  "),
		srcFqn, p.SourceAlias,
		existsKw, exFqn, p.ExistsAlias, predSQL)
}

// HistIncrementalParams configures RenderHistIncrementalStatement's full
// SCD2 script.
type HistIncrementalParams struct {
	SchemaName, HistTable, RawcoreTable string
	IncludeComment                     bool
	IncludeInserts                     bool
	ChangedInsert                      *HistInsertParams
	NewInsert                          *HistInsertParams
}

// RenderHistIncrementalStatement composes the full SCD2 incremental script
// in the fixed order spec section 4.7 requires: 1) close changed (UPDATE),
// 2) mark deleted (UPDATE), 3) insert new versions for changed keys, 4)
// insert first versions for new keys.
func RenderHistIncrementalStatement(d Dialect, p HistIncrementalParams) string {
	var parts []string
	if p.IncludeComment {
		parts = append(parts, fmt.Sprintf("-- History load for %s.%s (SCD Type 2).", p.SchemaName, p.HistTable))
	}
	parts = append(parts, RenderHistChangedUpdateSql(d, p.SchemaName, p.HistTable, p.RawcoreTable))
	parts = append(parts, RenderHistDeleteSql(d, p.SchemaName, p.HistTable, p.RawcoreTable))

	if p.IncludeInserts {
		if p.ChangedInsert != nil {
			parts = append(parts, RenderHistInsertStatement(d, *p.ChangedInsert))
		}
		if p.NewInsert != nil {
			parts = append(parts, RenderHistInsertStatement(d, *p.NewInsert))
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n")) + "\n"
}
