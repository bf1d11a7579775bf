package metalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

type recordingEngine struct {
	statements []string
}

func (r *recordingEngine) Name() string { return "fake" }
func (r *recordingEngine) Execute(ctx context.Context, statement string, args ...any) error {
	r.statements = append(r.statements, statement)
	return nil
}
func (r *recordingEngine) ExecuteMany(ctx context.Context, statements []string) error {
	r.statements = append(r.statements, statements...)
	return nil
}
func (r *recordingEngine) FetchAll(ctx context.Context, query string, args ...any) ([]engine.Row, error) {
	return nil, nil
}
func (r *recordingEngine) ExecuteScalar(ctx context.Context, query string, args ...any) (any, error) {
	return nil, nil
}
func (r *recordingEngine) IntrospectColumns(ctx context.Context, schema, table string) ([]engine.IntrospectedColumn, error) {
	return nil, nil
}
func (r *recordingEngine) TableExists(ctx context.Context, schema, table string) (bool, error) {
	return false, nil
}
func (r *recordingEngine) Close() error { return nil }

func TestEnsureTablesCreatesSchemaAndBothTables(t *testing.T) {
	eng := &recordingEngine{}
	w := Writer{Eng: eng, Dialect: dialect.NewPostgres(), MetaSchema: "meta"}
	assert.NoError(t, w.EnsureTables(context.Background()))
	assert.Len(t, eng.statements, 3)
	assert.Contains(t, eng.statements[0], "CREATE SCHEMA IF NOT EXISTS")
	assert.Contains(t, eng.statements[1], "load_run_log")
	assert.Contains(t, eng.statements[2], "load_run_snapshot")
}

func TestInsertLogSanitizesErrorMessage(t *testing.T) {
	eng := &recordingEngine{}
	w := Writer{Eng: eng, Dialect: dialect.NewDuckDB(), MetaSchema: "meta"}
	err := w.InsertLog(context.Background(), LogEntry{
		BatchRunID: "b1", LoadRunID: "l1", TargetSchema: "rawcore", TargetDataset: "rc_x",
		Status: "error", ErrorMessage: "boom\nline2", StartedAt: time.Now(), FinishedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.Len(t, eng.statements, 1)
	assert.NotContains(t, eng.statements[0], "\n")
}
