package dialect

import (
	"fmt"
	"strings"
)

// RenderCreateSchemaIfNotExists renders an idempotent schema-creation
// statement.
func RenderCreateSchemaIfNotExists(d Dialect, schema string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", d.QuoteIdent(schema))
}

// RenderCreateTableIfNotExists renders an idempotent CREATE TABLE with no
// columns pre-declared: used by engines whose introspection can evolve an
// empty shell table column-by-column afterwards.
func RenderCreateTableIfNotExists(d Dialect, schema, table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ();", d.RenderTableIdentifier(schema, table))
}

// RenderCreateTableFromColumns renders a CREATE TABLE with a full column
// list, used for first-time materialization and for rebuild sequences.
func RenderCreateTableFromColumns(d Dialect, schema, table string, cols []ColumnDef) string {
	lines := make([]string, len(cols))
	for i, c := range cols {
		lines[i] = fmt.Sprintf("  %s %s", d.QuoteIdent(c.Name), d.RenderPhysicalType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", d.RenderTableIdentifier(schema, table), strings.Join(lines, ",\n"))
}

// RenderAddColumn renders an ADD COLUMN statement.
func RenderAddColumn(d Dialect, schema, table string, col ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;",
		d.RenderTableIdentifier(schema, table), d.QuoteIdent(col.Name), d.RenderPhysicalType(col.Type))
}

// RenderAlterColumnType renders an ALTER COLUMN TYPE statement. Callers must
// check d.SupportsAlterColumnType() first; when it is false the
// materialization planner reports UNSUPPORTED_TYPE_EVOLUTION instead.
func RenderAlterColumnType(d Dialect, schema, table string, col ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;",
		d.RenderTableIdentifier(schema, table), d.QuoteIdent(col.Name), d.RenderPhysicalType(col.Type))
}

// RenderRenameTable renders a table rename. sqldef's generator uses the
// equivalent native ALTER TABLE RENAME across Postgres/MySQL; MSSQL/Fabric
// instead require sp_rename, handled by the dialect-name check below.
func RenderRenameTable(d Dialect, schema, oldName, newName string) string {
	if d.Name() == "mssql" || d.Name() == "fabric" {
		return fmt.Sprintf("EXEC sp_rename '%s.%s', '%s';", schema, oldName, newName)
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", d.RenderTableIdentifier(schema, oldName), d.QuoteIdent(newName))
}

// RenderRenameColumn renders a column rename, deferring to the dialect's
// RenameColumnSql so Databricks can inject its column-mapping precondition.
func RenderRenameColumn(d Dialect, schema, table, oldName, newName string) string {
	return d.RenameColumnSql(schema, table, oldName, newName)
}

// RenderDropTableIfExists renders an idempotent DROP TABLE.
func RenderDropTableIfExists(d Dialect, schema, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.RenderTableIdentifier(schema, table))
}

// RenderTruncateTable renders a TRUNCATE TABLE statement.
func RenderTruncateTable(d Dialect, schema, table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s;", d.RenderTableIdentifier(schema, table))
}

// RenderInsertSelectForRebuild renders the INSERT ... SELECT step of a
// rebuild sequence (DROP -> CREATE -> INSERT SELECT -> DROP old -> RENAME),
// used when a type change is not ALTERable and a full-column rebuild with
// an explicit select (carrying any lossy CAST/TRUNCATE expressions) is
// required instead.
func RenderInsertSelectForRebuild(d Dialect, targetSchema, targetTable string, columnNames []string, sourceSchema, sourceTable string, selectExprsSQL []string) string {
	quotedCols := make([]string, len(columnNames))
	for i, c := range columnNames {
		quotedCols[i] = d.QuoteIdent(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nSELECT %s\nFROM %s;",
		d.RenderTableIdentifier(targetSchema, targetTable),
		strings.Join(quotedCols, ", "),
		strings.Join(selectExprsSQL, ", "),
		d.RenderTableIdentifier(sourceSchema, sourceTable))
}

// RenderCreateOrReplaceView renders a CREATE OR REPLACE VIEW statement.
func RenderCreateOrReplaceView(d Dialect, schema, view, selectSQL string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;", d.RenderTableIdentifier(schema, view), selectSQL)
}
