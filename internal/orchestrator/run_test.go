package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/engine"
	"github.com/elevata-labs/elevata-core/internal/metalog"
)

type fakeEngine struct {
	executed []string
	execErr  error
}

func (f *fakeEngine) Name() string { return "fake" }
func (f *fakeEngine) Execute(ctx context.Context, statement string, args ...any) error {
	f.executed = append(f.executed, statement)
	return f.execErr
}
func (f *fakeEngine) ExecuteMany(ctx context.Context, statements []string) error {
	f.executed = append(f.executed, statements...)
	return f.execErr
}
func (f *fakeEngine) FetchAll(ctx context.Context, query string, args ...any) ([]engine.Row, error) {
	return nil, nil
}
func (f *fakeEngine) ExecuteScalar(ctx context.Context, query string, args ...any) (any, error) {
	return nil, nil
}
func (f *fakeEngine) IntrospectColumns(ctx context.Context, schema, table string) ([]engine.IntrospectedColumn, error) {
	return nil, nil
}
func (f *fakeEngine) TableExists(ctx context.Context, schema, table string) (bool, error) {
	return false, nil
}
func (f *fakeEngine) Close() error { return nil }

func testRunner(cat catalog.Catalog, eng *fakeEngine) Runner {
	d := dialect.NewDuckDB()
	return Runner{
		Catalog:        cat,
		Engine:         eng,
		Dialect:        d,
		MetaLog:        metalog.Writer{Eng: eng, Dialect: d, MetaSchema: "meta"},
		TargetSystem:   "duckdb",
		AllowedSchemas: map[string]bool{"core": true, "mart": true},
	}
}

func TestPreflightBlockReasonBlocksCommentOnlySql(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	reason := r.preflightBlockReason("-- just a comment\n/* nothing else */", "core")
	assert.Contains(t, reason, "PreflightCommentOnlySql")
}

func TestPreflightBlockReasonBlocksCrossSystemSql(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	reason := r.preflightBlockReason("SELECT * FROM secret_system.accounts", "core")
	assert.Contains(t, reason, "PreflightCrossSystemSql")
}

func TestPreflightBlockReasonAllowsOwnAndAllowedSchemas(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	reason := r.preflightBlockReason("SELECT * FROM core.c_customer JOIN mart.m_region ON true", "core")
	assert.Empty(t, reason)
}

func TestApplyRuntimePlaceholdersSubstitutesRunIDAndTimestamp(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	sqlText, err := r.applyRuntimePlaceholders("INSERT INTO t VALUES ({{load_run_id}}, {{load_timestamp}})", "run-123", catalog.TargetDataset{})
	assert.NoError(t, err)
	assert.Contains(t, sqlText, "run-123")
	assert.NotContains(t, sqlText, "{{load_run_id}}")
	assert.NotContains(t, sqlText, "{{load_timestamp}}")
}

func TestApplyRuntimePlaceholdersMissingIncrementPolicyIsFatal(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	td := catalog.TargetDataset{Schema: "core", Name: "c_order", IncrementalStrategy: "full"}
	_, err := r.applyRuntimePlaceholders("SELECT * WHERE ts > {{DELTA_CUTOFF}}", "run-123", td)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MissingIncrementPolicy")
}

func TestApplyRuntimePlaceholdersResolvesDeltaCutoff(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	r.DeltaCutoff = func(sourceDatasetKey string) (string, bool) { return "'2026-07-30'", true }
	td := catalog.TargetDataset{Schema: "core", Name: "c_order", IncrementalStrategy: "append", IncrementalSource: "erp.sales.orders"}
	sqlText, err := r.applyRuntimePlaceholders("SELECT * WHERE ts > {{DELTA_CUTOFF}}", "run-123", td)
	assert.NoError(t, err)
	assert.Contains(t, sqlText, "2026-07-30")
}

func TestRunSingleTargetDatasetUnresolvableDatasetErrors(t *testing.T) {
	r := testRunner(catalog.NewStatic(catalog.Static{}), &fakeEngine{})
	res := r.runSingleTargetDataset(context.Background(), "b1", "l1", "core.missing", 1, Policy{})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.ErrorMessage, "unresolvable target dataset")
}

func TestRunRawIngestionSkipsWhenNoSourceResolved(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{{Schema: "raw", Name: "rc_orders"}},
	})
	r := testRunner(cat, &fakeEngine{})
	td, _ := cat.TargetDataset("raw.rc_orders")
	res := r.runRawIngestion(context.Background(), "b1", "l1", td, 1, time.Now())
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestRunBatchAbortsSubsequentDatasetsAfterError(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "a"},
			{Schema: "core", Name: "b"},
		},
	})
	r := testRunner(cat, &fakeEngine{})
	snap, err := r.RunBatch(context.Background(), []string{"core.a", "core.b"}, Policy{NoDeps: true})
	assert.NoError(t, err)
	assert.True(t, snap.HadError)
	assert.Len(t, snap.Results, 2)
	assert.Equal(t, StatusError, snap.Results[0].Status)
	assert.Equal(t, StatusBlocked, snap.Results[1].Status)
}

func TestRunBatchContinuesOnErrorWhenPolicySet(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "a"},
			{Schema: "core", Name: "b"},
		},
	})
	r := testRunner(cat, &fakeEngine{})
	snap, err := r.RunBatch(context.Background(), []string{"core.a", "core.b"}, Policy{NoDeps: true, ContinueOnError: true})
	assert.NoError(t, err)
	assert.Equal(t, StatusError, snap.Results[0].Status)
	assert.Equal(t, StatusError, snap.Results[1].Status)
}
