package dialect

import (
	"fmt"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// RenderMergeStatement renders an UPSERT for target_fqn. When d.SupportsMerge()
// is true it emits a single ANSI-ish MERGE; otherwise it emits a
// deterministic UPDATE...FROM + INSERT...WHERE NOT EXISTS fallback pair.
// Mirrors base.py's render_merge_statement.
func RenderMergeStatement(d Dialect, targetSchema, targetTable, sourceSelectSQL string, keyColumns, updateColumns, insertColumns []string) (string, error) {
	if len(keyColumns) == 0 {
		return "", elvterr.New(elvterr.KindDialect, "render_merge_statement requires non-empty key_columns")
	}

	insertCols := dedupNonEmpty(insertColumns)
	if len(insertCols) == 0 {
		insertCols = dedupNonEmpty(append(append([]string{}, keyColumns...), updateColumns...))
	}

	keySet := map[string]bool{}
	for _, k := range keyColumns {
		keySet[k] = true
	}
	var updates []string
	for _, c := range updateColumns {
		if c != "" && !keySet[c] {
			updates = append(updates, c)
		}
	}

	q := d.QuoteIdent
	targetAlias, sourceAlias := "t", "s"
	tgt := d.RenderTableIdentifier(targetSchema, targetTable)
	src := fmt.Sprintf("(\n%s\n) AS %s", strings.TrimSpace(sourceSelectSQL), q(sourceAlias))

	var onParts []string
	for _, k := range keyColumns {
		onParts = append(onParts, fmt.Sprintf("%s.%s = %s.%s", q(targetAlias), q(k), q(sourceAlias), q(k)))
	}
	onPred := strings.Join(onParts, " AND ")

	if d.SupportsMerge() {
		var parts []string
		parts = append(parts, fmt.Sprintf("MERGE INTO %s AS %s\nUSING %s\nON %s", tgt, q(targetAlias), src, onPred))
		if len(updates) > 0 {
			var assigns []string
			for _, c := range updates {
				assigns = append(assigns, fmt.Sprintf("%s = %s.%s", q(c), q(sourceAlias), q(c)))
			}
			parts = append(parts, "WHEN MATCHED THEN UPDATE SET "+strings.Join(assigns, ", "))
		}
		var insertColsQ, insertValsQ []string
		for _, c := range insertCols {
			insertColsQ = append(insertColsQ, q(c))
			insertValsQ = append(insertValsQ, fmt.Sprintf("%s.%s", q(sourceAlias), q(c)))
		}
		parts = append(parts, fmt.Sprintf("WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
			strings.Join(insertColsQ, ", "), strings.Join(insertValsQ, ", ")))
		return strings.TrimSpace(strings.Join(parts, "\n")), nil
	}

	var updateSQL string
	if len(updates) > 0 {
		var assigns []string
		for _, c := range updates {
			assigns = append(assigns, fmt.Sprintf("%s.%s = %s.%s", q(targetAlias), q(c), q(sourceAlias), q(c)))
		}
		updateSQL = fmt.Sprintf("UPDATE %s AS %s\nSET %s\nFROM %s\nWHERE %s;",
			tgt, q(targetAlias), strings.Join(assigns, ", "), src, onPred)
	}

	var insertColsQ, selectColsQ []string
	for _, c := range insertCols {
		insertColsQ = append(insertColsQ, q(c))
		selectColsQ = append(selectColsQ, fmt.Sprintf("%s.%s", q(sourceAlias), q(c)))
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s)\nSELECT %s\nFROM %s\nWHERE NOT EXISTS (\n  SELECT 1\n  FROM %s AS %s\n  WHERE %s\n);",
		tgt, strings.Join(insertColsQ, ", "), strings.Join(selectColsQ, ", "), src, tgt, q(targetAlias), onPred)

	if updateSQL != "" {
		return strings.TrimSpace(updateSQL + "\n\n" + insertSQL), nil
	}
	return strings.TrimSpace(insertSQL), nil
}

func dedupNonEmpty(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range in {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// defaultDeleteDetectionSql is the ANSI-ish DELETE + NOT EXISTS default,
// used by every dialect except MSSQL/Fabric (see dialects.go's override,
// which emits "DELETE t FROM target AS t ... " instead).
func defaultDeleteDetectionSql(d Dialect, targetSchema, targetTable, stageSchema, stageTable string, joinPredicates []string, scopeFilter string) string {
	target := d.RenderTableIdentifier(targetSchema, targetTable)
	stage := d.RenderTableIdentifier(stageSchema, stageTable)

	joinSQL := "1=1"
	if len(joinPredicates) > 0 {
		joinSQL = strings.Join(joinPredicates, " AND ")
	}

	var conditions []string
	if scopeFilter != "" {
		conditions = append(conditions, "("+scopeFilter+")")
	}
	conditions = append(conditions, fmt.Sprintf("NOT EXISTS (\n  SELECT 1\n  FROM %s AS s\n  WHERE %s\n)", stage, joinSQL))

	return fmt.Sprintf("DELETE FROM %s AS t\nWHERE %s;", target, strings.Join(conditions, "\n  AND "))
}

// mssqlDeleteDetectionSql renders MSSQL/Fabric's "DELETE t FROM ... AS t"
// shape, since MSSQL does not support "DELETE FROM x AS t".
func mssqlDeleteDetectionSql(d *generic, targetSchema, targetTable, stageSchema, stageTable string, joinPredicates []string, scopeFilter string) string {
	target := d.RenderTableIdentifier(targetSchema, targetTable)
	stage := d.RenderTableIdentifier(stageSchema, stageTable)

	joinSQL := "1=1"
	if len(joinPredicates) > 0 {
		joinSQL = strings.Join(joinPredicates, " AND ")
	}

	var conditions []string
	if scopeFilter != "" {
		conditions = append(conditions, "("+scopeFilter+")")
	}
	conditions = append(conditions, fmt.Sprintf("NOT EXISTS (\n  SELECT 1\n  FROM %s AS s\n  WHERE %s\n)", stage, joinSQL))

	return fmt.Sprintf("DELETE t FROM %s AS t\nWHERE %s;", target, strings.Join(conditions, "\n  AND "))
}
