// Package metalog writes the orchestrator's two meta tables (spec section
// 6): meta.load_run_log (one row per dataset attempt, including
// orchestration-only outcomes) and meta.load_run_snapshot (one row per
// batch run holding the serialized execution snapshot). Inserts are
// rendered per-dialect through the same engine.Engine the dataset's own
// DDL/DML runs through, so a meta-log failure never needs a second
// connection pool.
package metalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// LogEntry is one meta.load_run_log row, columns in the registry order spec
// section 6 names.
type LogEntry struct {
	BatchRunID     string
	LoadRunID      string
	TargetSchema   string
	TargetDataset  string
	TargetSystem   string
	Profile        string
	Mode           string
	HandleDeletes  bool
	Historize      bool
	StartedAt      time.Time
	FinishedAt     time.Time
	RenderMs       int64
	ExecutionMs    int64
	SQLLength      int
	RowsAffected   int64
	Status         string // success|error|blocked|aborted|skipped
	StatusReason   string
	AttemptNo      int
	BlockedBy      string
	ErrorMessage   string
}

// Writer writes LogEntry and snapshot rows into a schema on a live engine,
// rendering literals through d so BigQuery's triple-quoted string literals
// and MSSQL/Fabric's NVARCHAR/VARCHAR split are respected (spec section 6).
type Writer struct {
	Eng        engine.Engine
	Dialect    dialect.Dialect
	MetaSchema string // default "meta"
}

func (w Writer) schema() string {
	if w.MetaSchema == "" {
		return "meta"
	}
	return w.MetaSchema
}

// EnsureTables creates meta.load_run_log / meta.load_run_snapshot if they do
// not already exist, honoring ELEVATA_AUTO_PROVISION_SCHEMAS/_TABLES/_META_LOG
// at the caller's discretion (this method is only invoked when the caller
// has already decided auto-provisioning is enabled).
func (w Writer) EnsureTables(ctx context.Context) error {
	d := w.Dialect
	schemaIdent := d.QuoteIdent(w.schema())
	logTable := d.RenderTableIdentifier(w.schema(), "load_run_log")
	snapshotTable := d.RenderTableIdentifier(w.schema(), "load_run_snapshot")

	createLog := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  batch_run_id %s, load_run_id %s, target_schema %s, target_dataset %s,
  target_system %s, profile %s, mode %s, handle_deletes %s, historize %s,
  started_at %s, finished_at %s, render_ms %s, execution_ms %s,
  sql_length %s, rows_affected %s, status %s, status_reason %s,
  attempt_no %s, blocked_by %s, error_message %s
)`, logTable,
		strType(d), strType(d), strType(d), strType(d),
		strType(d), strType(d), strType(d), boolType(d), boolType(d),
		tsType(d), tsType(d), intType(d), intType(d),
		intType(d), intType(d), strType(d), strType(d),
		intType(d), strType(d), longStrType(d))

	createSnapshot := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  batch_run_id %s, created_at %s, root_dataset_key %s, had_error %s, snapshot_json %s
)`, snapshotTable, strType(d), tsType(d), strType(d), boolType(d), longStrType(d))

	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaIdent),
		createLog,
		createSnapshot,
	}
	return w.Eng.ExecuteMany(ctx, statements)
}

// InsertLog inserts one meta.load_run_log row. Per spec section 7, meta-log
// inserts are best-effort and must never abort the data load - callers
// should log-and-continue on a non-nil return rather than failing the run.
func (w Writer) InsertLog(ctx context.Context, e LogEntry) error {
	d := w.Dialect
	table := d.RenderTableIdentifier(w.schema(), "load_run_log")
	sql := fmt.Sprintf(
		`INSERT INTO %s (batch_run_id, load_run_id, target_schema, target_dataset, target_system, profile, mode, handle_deletes, historize, started_at, finished_at, render_ms, execution_ms, sql_length, rows_affected, status, status_reason, attempt_no, blocked_by, error_message) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		table,
		d.Literal(e.BatchRunID), d.Literal(e.LoadRunID), d.Literal(e.TargetSchema), d.Literal(e.TargetDataset),
		d.Literal(e.TargetSystem), d.Literal(e.Profile), d.Literal(e.Mode), d.Literal(e.HandleDeletes), d.Literal(e.Historize),
		d.Literal(e.StartedAt.UTC().Format(time.RFC3339)), d.Literal(e.FinishedAt.UTC().Format(time.RFC3339)),
		d.Literal(e.RenderMs), d.Literal(e.ExecutionMs), d.Literal(e.SQLLength), d.Literal(e.RowsAffected),
		d.Literal(e.Status), d.Literal(e.StatusReason), d.Literal(e.AttemptNo), d.Literal(e.BlockedBy), d.Literal(sanitizeErrorMessage(e.ErrorMessage)),
	)
	return w.Eng.Execute(ctx, sql)
}

// InsertSnapshot writes one meta.load_run_snapshot row holding the already
// JSON-serialized execution snapshot (see orchestrator.BuildSnapshot).
func (w Writer) InsertSnapshot(ctx context.Context, batchRunID string, createdAt time.Time, rootDatasetKey string, hadError bool, snapshotJSON string) error {
	d := w.Dialect
	table := d.RenderTableIdentifier(w.schema(), "load_run_snapshot")
	sql := fmt.Sprintf(
		`INSERT INTO %s (batch_run_id, created_at, root_dataset_key, had_error, snapshot_json) VALUES (%s, %s, %s, %s, %s)`,
		table,
		d.Literal(batchRunID), d.Literal(createdAt.UTC().Format(time.RFC3339)), d.Literal(rootDatasetKey), d.Literal(hadError), d.Literal(snapshotJSON),
	)
	return w.Eng.Execute(ctx, sql)
}

// sanitizeErrorMessage collapses newlines and caps length, per spec section
// 7's "Engine errors are captured, sanitized" policy; quote escaping is left
// to dialect Literal when the message is rendered into the INSERT.
func sanitizeErrorMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	const maxLen = 2000
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

// strType/longStrType pick the DDL spelling spec section 6 calls out
// explicitly: BigQuery's STRING has no length bound (used for both short
// fields and the large serialized snapshot JSON); MSSQL/Fabric split
// NVARCHAR(n) short fields from NVARCHAR(MAX) for the snapshot blob;
// everything else uses ANSI VARCHAR.
func strType(d dialect.Dialect) string {
	switch d.Name() {
	case "bigquery":
		return "STRING"
	case "mssql", "fabric":
		return "NVARCHAR(255)"
	default:
		return "VARCHAR(255)"
	}
}

func longStrType(d dialect.Dialect) string {
	switch d.Name() {
	case "bigquery":
		return "STRING"
	case "mssql", "fabric":
		return "NVARCHAR(MAX)"
	default:
		return "VARCHAR(8000)"
	}
}

func boolType(dialect.Dialect) string { return "BOOLEAN" }
func intType(dialect.Dialect) string  { return "BIGINT" }
func tsType(dialect.Dialect) string   { return "TIMESTAMP" }
