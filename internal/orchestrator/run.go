package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
	"github.com/elevata-labs/elevata-core/internal/ingest"
	"github.com/elevata-labs/elevata-core/internal/loadplan"
	"github.com/elevata-labs/elevata-core/internal/logicalplan"
	"github.com/elevata-labs/elevata-core/internal/materialize"
	"github.com/elevata-labs/elevata-core/internal/metalog"
	"github.com/elevata-labs/elevata-core/internal/types"
	"github.com/elevata-labs/elevata-core/util"
)

// Status is one dataset's terminal outcome for a run, driving both the
// meta.load_run_log "status" column and the CLI's status glyph.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusDryRun           Status = "dry_run"
	StatusPreflightBlocked Status = "preflight_blocked"
	StatusBlocked          Status = "blocked"
	StatusAborted          Status = "aborted"
	StatusSkipped          Status = "skipped"
	StatusError            Status = "error"
)

// Glyph returns the status glyph spec section 7 specifies for the CLI's
// one-line-per-dataset execution summary.
func (s Status) Glyph() string {
	switch s {
	case StatusSuccess, StatusDryRun:
		return "✔" // ✔
	case StatusPreflightBlocked:
		return "⚠" // ⚠
	case StatusBlocked, StatusAborted:
		return "⏸" // ⏸
	case StatusError:
		return "✖" // ✖
	default:
		return "⏭" // ⏭ (skipped/other)
	}
}

// Policy bundles the orchestrator's CLI gating options (spec section 6).
type Policy struct {
	Execute              bool
	Print                bool
	NoDeps               bool
	ContinueOnError      bool
	MaxRetries           int
	NoPlanGuard          bool
	MetaSchemaName       string
	AutoProvisionSchemas bool
	AutoProvisionTables  bool
	AutoProvisionMetaLog bool

	MaterializePolicy materialize.Policy
}

// DatasetResult is one dataset's outcome, suitable for meta.load_run_log and
// the run-level Snapshot.
type DatasetResult struct {
	DatasetKey   string    `json:"dataset_key"`
	Mode         string    `json:"mode"`
	Status       Status    `json:"status"`
	StatusReason string    `json:"status_reason"`
	RenderMs     int64     `json:"render_ms"`
	ExecutionMs  int64     `json:"execution_ms"`
	SQLLength    int       `json:"sql_length"`
	RowsAffected int64     `json:"rows_affected"`
	AttemptNo    int       `json:"attempt_no"`
	BlockedBy    string    `json:"blocked_by,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

var fromJoinSchemaTable = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)\.[A-Za-z_\[\]"` + "`" + `][A-Za-z0-9_\[\]"` + "`" + `]*`)

// Runner drives run_single_target_dataset against one target system's
// catalog, engine, and dialect for the lifetime of a batch run (spec
// section 4.10, section 5's "single execution engine per target system,
// owned by the orchestrator for the lifetime of the run").
type Runner struct {
	Catalog      catalog.Catalog
	Engine       engine.Engine
	Dialect      dialect.Dialect
	Ingest       map[ingest.ConnectorKind]ingest.Connector
	MetaLog      metalog.Writer
	Profile      string
	TargetSystem string

	// DeltaCutoff resolves {{DELTA_CUTOFF}} for an incremental source's
	// active IncrementPolicy in the current environment; missing policy is
	// fatal only if the rendered SQL actually contains the placeholder.
	DeltaCutoff func(sourceDatasetKey string) (string, bool)

	// AllowedSchemas is the set of target schema short names this run is
	// permitted to read/write, used by the cross-system-SQL guardrail.
	AllowedSchemas map[string]bool
}

// RunBatch resolves roots, the execution order, and the plan fingerprint,
// then executes run_single_target_dataset once per dataset in order, per
// spec section 4.10.
func (r Runner) RunBatch(ctx context.Context, roots []string, policy Policy) (Snapshot, error) {
	batchRunID := uuid.NewString()
	planTimestamp := time.Now().UTC().Format(time.RFC3339)

	order, err := ResolveExecutionOrder(r.Catalog, roots, policy.NoDeps)
	if err != nil {
		return Snapshot{}, err
	}

	fingerprint, err := ComputeFingerprint(r.Catalog, order, planTimestamp)
	if err != nil {
		return Snapshot{}, err
	}

	if policy.AutoProvisionMetaLog {
		if err := r.MetaLog.EnsureTables(ctx); err != nil {
			return Snapshot{}, elvterr.Wrap(elvterr.KindExecution, err, "provisioning meta-log tables")
		}
	}

	results := make([]DatasetResult, 0, len(order))
	aborted := false
	for _, key := range order {
		if aborted {
			results = append(results, DatasetResult{DatasetKey: key, Status: StatusBlocked, StatusReason: "OrchestrationBlocked: an earlier dataset failed and continue_on_error is false"})
			r.logOrchestrationOutcome(ctx, batchRunID, key, results[len(results)-1])
			continue
		}

		if !policy.NoPlanGuard {
			if err := VerifyFingerprint(r.Catalog, order, planTimestamp, fingerprint); err != nil {
				util.Zap().Errorw("plan fingerprint mismatch", "batch_run_id", batchRunID, "dataset", key, "error", err)
				res := DatasetResult{DatasetKey: key, Status: StatusAborted, StatusReason: err.Error(), StartedAt: time.Now(), FinishedAt: time.Now()}
				results = append(results, res)
				r.logOrchestrationOutcome(ctx, batchRunID, key, res)
				aborted = true
				continue
			}
		}

		util.Zap().Infow("dataset start", "batch_run_id", batchRunID, "dataset", key)
		res := r.runWithRetries(ctx, batchRunID, key, policy)
		util.Zap().Infow("dataset finish", "batch_run_id", batchRunID, "dataset", key, "status", res.Status, "attempt_no", res.AttemptNo)
		results = append(results, res)
		if res.Status == StatusError && !policy.ContinueOnError {
			aborted = true
		}
	}

	snapshot := BuildSnapshot(batchRunID, firstOrEmpty(roots), policy, order, fingerprint, results, time.Now().UTC())
	return snapshot, nil
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func (r Runner) runWithRetries(ctx context.Context, batchRunID, datasetKey string, policy Policy) DatasetResult {
	var last DatasetResult
	attempt := 0

	operation := func() error {
		attempt++
		loadRunID := uuid.NewString()
		last = r.runSingleTargetDataset(ctx, batchRunID, loadRunID, datasetKey, attempt, policy)
		if last.Status == StatusError {
			return elvterr.New(elvterr.KindExecution, "%s", last.ErrorMessage)
		}
		return nil
	}

	maxRetries := policy.MaxRetries
	if maxRetries <= 0 {
		_ = operation()
		return last
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries))
	_ = backoff.Retry(func() error {
		err := operation()
		if err != nil {
			if !elvterr.Retryable(err) {
				return backoff.Permanent(err)
			}
			util.Zap().Warnw("retrying dataset after error", "batch_run_id", batchRunID, "dataset", datasetKey, "attempt_no", attempt, "error", err)
		}
		return err
	}, b)
	return last
}

// runSingleTargetDataset implements spec section 4.10's per-dataset steps
// 1-7 for one attempt.
func (r Runner) runSingleTargetDataset(ctx context.Context, batchRunID, loadRunID, datasetKey string, attemptNo int, policy Policy) DatasetResult {
	started := time.Now()
	td, ok := r.Catalog.TargetDataset(datasetKey)
	if !ok {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Status: StatusError, StartedAt: started, FinishedAt: time.Now(),
			ErrorMessage: fmt.Sprintf("unresolvable target dataset %s", datasetKey), AttemptNo: attemptNo,
		})
	}

	if td.Schema == "raw" {
		return r.runRawIngestion(ctx, batchRunID, loadRunID, td, attemptNo, started)
	}

	plan := loadplan.Build(td)

	if policy.Execute {
		if err := r.materializeDataset(ctx, td, policy.MaterializePolicy); err != nil {
			return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
				DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusError,
				StartedAt: started, FinishedAt: time.Now(), ErrorMessage: err.Error(), AttemptNo: attemptNo,
			})
		}
	}

	renderStart := time.Now()
	sqlText, err := r.renderDatasetSQL(td)
	renderMs := time.Since(renderStart).Milliseconds()
	if err != nil {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusError, RenderMs: renderMs,
			StartedAt: started, FinishedAt: time.Now(), ErrorMessage: err.Error(), AttemptNo: attemptNo,
		})
	}

	sqlText, err = r.applyRuntimePlaceholders(sqlText, loadRunID, td)
	if err != nil {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusError, RenderMs: renderMs,
			StartedAt: started, FinishedAt: time.Now(), ErrorMessage: err.Error(), AttemptNo: attemptNo,
		})
	}

	if reason := r.preflightBlockReason(sqlText, td.Schema); reason != "" {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusPreflightBlocked, RenderMs: renderMs,
			SQLLength: len(sqlText), StartedAt: started, FinishedAt: time.Now(), StatusReason: reason, AttemptNo: attemptNo,
		})
	}

	if !policy.Execute {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusDryRun, RenderMs: renderMs,
			SQLLength: len(sqlText), StartedAt: started, FinishedAt: time.Now(), AttemptNo: attemptNo,
		})
	}

	execStart := time.Now()
	execErr := r.Engine.Execute(ctx, sqlText)
	execMs := time.Since(execStart).Milliseconds()
	if execErr != nil {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusError, RenderMs: renderMs, ExecutionMs: execMs,
			SQLLength: len(sqlText), StartedAt: started, FinishedAt: time.Now(), ErrorMessage: execErr.Error(), AttemptNo: attemptNo,
		})
	}

	return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
		DatasetKey: datasetKey, Mode: string(plan.Mode), Status: StatusSuccess, RenderMs: renderMs, ExecutionMs: execMs,
		SQLLength: len(sqlText), StartedAt: started, FinishedAt: time.Now(), AttemptNo: attemptNo,
	})
}

func (r Runner) runRawIngestion(ctx context.Context, batchRunID, loadRunID string, td catalog.TargetDataset, attemptNo int, started time.Time) DatasetResult {
	var ds catalog.SourceDataset
	found := false
	for _, in := range r.Catalog.TargetDatasetInputs(td.Key()) {
		if in.SourceDataset == "" {
			continue
		}
		for _, candidate := range r.Catalog.SourceDatasets() {
			if candidate.Key() == in.SourceDataset {
				ds = candidate
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: td.Key(), Mode: "orchestration", Status: StatusSkipped, StartedAt: started, FinishedAt: time.Now(),
			StatusReason: "no SourceDataset input resolved for raw target", AttemptNo: attemptNo,
		})
	}

	result, err := ingest.Dispatch(ctx, ds, td.Schema, td.Name, r.Ingest)
	finished := time.Now()
	if err != nil {
		return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
			DatasetKey: td.Key(), Mode: "orchestration", Status: StatusError, StartedAt: started, FinishedAt: finished,
			ErrorMessage: err.Error(), AttemptNo: attemptNo,
		})
	}
	status := StatusSuccess
	if result.Skipped {
		status = StatusSkipped
	}
	return r.finish(ctx, batchRunID, loadRunID, DatasetResult{
		DatasetKey: td.Key(), Mode: "orchestration", Status: status, RowsAffected: result.RowsIngested,
		StartedAt: started, FinishedAt: finished, AttemptNo: attemptNo,
		StatusReason: fmt.Sprintf("ingest_mode=%s connector=%s", result.Mode, result.ConnectorKind),
	})
}

func (r Runner) materializeDataset(ctx context.Context, td catalog.TargetDataset, policy materialize.Policy) error {
	actualExists, err := r.Engine.TableExists(ctx, td.Schema, td.Name)
	if err != nil {
		return elvterr.Wrap(elvterr.KindExecution, err, "checking existence of %s", td.Key())
	}

	var actual []engine.IntrospectedColumn
	if actualExists {
		actual, err = r.Engine.IntrospectColumns(ctx, td.Schema, td.Name)
		if err != nil {
			return elvterr.Wrap(elvterr.KindExecution, err, "introspecting %s", td.Key())
		}
	}

	cols := r.Catalog.TargetColumns(td.Key())
	desired := make([]materialize.DesiredColumn, 0, len(cols))
	for _, c := range cols {
		if !c.Active {
			continue
		}
		t := types.Type{Datatype: types.Canonical(c.CanonicalType), Length: c.Length, Precision: c.Precision, Scale: c.Scale}
		desired = append(desired, materialize.DesiredColumn{Name: c.Name, Type: t, FormerNames: c.FormerNames})
	}

	schemaExists := true // schema provisioning is a one-time bootstrap step, assumed done by EnsureTables/migrations
	plan := materialize.Build(r.Dialect, td.Schema, td.Name, td.FormerNames, td.Name, schemaExists, actualExists, actual, desired, policy)
	if len(plan.BlockingErrors) > 0 {
		return elvterr.New(elvterr.KindSchemaDrift, "materialization blocked for %s: %s", td.Key(), strings.Join(plan.BlockingErrors, "; "))
	}
	return materialize.Apply(ctx, r.Engine, plan.Steps)
}

func (r Runner) renderDatasetSQL(td catalog.TargetDataset) (string, error) {
	required := logicalplan.NewRequiredColumns()
	var (
		plan logicalplan.Plan
		err  error
	)
	if td.QueryRoot != "" {
		plan, err = logicalplan.CompileQueryTree(r.Catalog, td, required)
	} else {
		plan, err = logicalplan.BuildClassicSelect(r.Catalog, td, required)
	}
	if err != nil {
		return "", elvterr.Wrap(elvterr.KindCompile, err, "building logical plan for %s", td.Key())
	}
	return dialect.RenderPlan(r.Dialect, plan)
}

func (r Runner) applyRuntimePlaceholders(sqlText, loadRunID string, td catalog.TargetDataset) (string, error) {
	sqlText = strings.ReplaceAll(sqlText, "{{load_run_id}}", r.Dialect.Literal(loadRunID))
	sqlText = strings.ReplaceAll(sqlText, "{{load_timestamp}}", r.Dialect.Literal(time.Now().UTC().Format(time.RFC3339)))

	if strings.Contains(sqlText, "{{DELTA_CUTOFF}}") {
		plan := loadplan.Build(td)
		if plan.IncrementalSource == "" || r.DeltaCutoff == nil {
			return "", elvterr.New(elvterr.KindConfig, "MissingIncrementPolicy: %s requires {{DELTA_CUTOFF}} but has no active increment policy", td.Key())
		}
		cutoff, ok := r.DeltaCutoff(plan.IncrementalSource)
		if !ok {
			return "", elvterr.New(elvterr.KindConfig, "MissingIncrementPolicy: no active IncrementPolicy resolved for %s", plan.IncrementalSource)
		}
		sqlText = strings.ReplaceAll(sqlText, "{{DELTA_CUTOFF}}", cutoff)
	}
	return sqlText, nil
}

// preflightBlockReason implements spec section 4.10 step 5's two
// guardrails: comment-only SQL, and cross-system SQL referencing a schema
// outside AllowedSchemas.
func (r Runner) preflightBlockReason(sqlText, ownSchema string) string {
	stripped := stripSQLComments(sqlText)
	if strings.TrimSpace(stripped) == "" {
		return "PreflightCommentOnlySql: rendered SQL has no executable statement"
	}

	for _, m := range fromJoinSchemaTable.FindAllStringSubmatch(sqlText, -1) {
		schema := strings.Trim(m[1], `"[]`+"`")
		if schema == ownSchema {
			continue
		}
		if r.AllowedSchemas != nil && !r.AllowedSchemas[schema] {
			return fmt.Sprintf("PreflightCrossSystemSql: statement references disallowed schema %q", schema)
		}
	}
	return ""
}

func stripSQLComments(sqlText string) string {
	noLine := regexp.MustCompile(`--[^\n]*`).ReplaceAllString(sqlText, "")
	noBlock := regexp.MustCompile(`(?s)/\*.*?\*/`).ReplaceAllString(noLine, "")
	return noBlock
}

func (r Runner) finish(ctx context.Context, batchRunID, loadRunID string, res DatasetResult) DatasetResult {
	entry := metalog.LogEntry{
		BatchRunID: batchRunID, LoadRunID: loadRunID,
		TargetSystem: r.TargetSystem, Profile: r.Profile,
		Mode: res.Mode, StartedAt: res.StartedAt, FinishedAt: res.FinishedAt,
		RenderMs: res.RenderMs, ExecutionMs: res.ExecutionMs, SQLLength: res.SQLLength,
		RowsAffected: res.RowsAffected, Status: string(res.Status), StatusReason: res.StatusReason,
		AttemptNo: res.AttemptNo, ErrorMessage: res.ErrorMessage,
	}
	parts := strings.SplitN(res.DatasetKey, ".", 2)
	if len(parts) == 2 {
		entry.TargetSchema, entry.TargetDataset = parts[0], parts[1]
	}
	// Best-effort: a meta-log insert failure must never abort the data
	// load (spec section 7).
	_ = r.MetaLog.InsertLog(ctx, entry)
	return res
}

func (r Runner) logOrchestrationOutcome(ctx context.Context, batchRunID, datasetKey string, res DatasetResult) {
	res.Mode = "orchestration"
	r.finish(ctx, batchRunID, "", res)
}
