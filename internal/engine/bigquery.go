package engine

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// bigqueryEngine implements Engine directly against the native
// cloud.google.com/go/bigquery client rather than a database/sql driver -
// BigQuery has no first-class database/sql driver in this ecosystem, so
// this is the one Engine implementation that does not embed sqlEngine.
type bigqueryEngine struct {
	client    *bigquery.Client
	projectID string
	dataset   string
}

// NewBigQueryEngine opens a BigQuery client scoped to cfg.ProjectID, with
// Config.Database holding the dataset name.
func NewBigQueryEngine(ctx context.Context, cfg Config) (Engine, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "opening bigquery client for project %q failed", cfg.ProjectID)
	}
	return &bigqueryEngine{client: client, projectID: cfg.ProjectID, dataset: cfg.Database}, nil
}

func (e *bigqueryEngine) Name() string { return "bigquery" }

func (e *bigqueryEngine) run(ctx context.Context, statement string) (*bigquery.RowIterator, error) {
	q := e.client.Query(statement)
	job, err := q.Run(ctx)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "submitting bigquery job failed")
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "waiting for bigquery job failed")
	}
	if err := status.Err(); err != nil {
		return nil, elvterr.Wrap(elvterr.KindExecution, err, "bigquery job completed with error")
	}
	return job.Read(ctx)
}

func (e *bigqueryEngine) Execute(ctx context.Context, statement string, args ...any) error {
	_, err := e.run(ctx, statement)
	return err
}

func (e *bigqueryEngine) ExecuteMany(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if err := e.Execute(ctx, stmt); err != nil {
			return elvterr.Wrap(elvterr.KindExecution, err, "bigquery batch aborted mid-script")
		}
	}
	return nil
}

func (e *bigqueryEngine) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	it, err := e.run(ctx, query)
	if err != nil {
		return nil, err
	}
	var out []Row
	for {
		var rowMap map[string]bigquery.Value
		err := it.Next(&rowMap)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, elvterr.Wrap(elvterr.KindExecution, err, "iterating bigquery rows failed")
		}
		row := make(Row, len(rowMap))
		for k, v := range rowMap {
			row[k] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func (e *bigqueryEngine) ExecuteScalar(ctx context.Context, query string, args ...any) (any, error) {
	rows, err := e.FetchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, elvterr.New(elvterr.KindExecution, "scalar query returned no rows")
	}
	for _, v := range rows[0] {
		return v, nil
	}
	return nil, nil
}

func (e *bigqueryEngine) IntrospectColumns(ctx context.Context, schema, table string) ([]IntrospectedColumn, error) {
	query := fmt.Sprintf(
		"SELECT column_name, data_type, is_nullable FROM `%s.%s.INFORMATION_SCHEMA.COLUMNS` WHERE table_name = '%s' ORDER BY ordinal_position",
		e.projectID, schema, table)
	rows, err := e.FetchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	cols := make([]IntrospectedColumn, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, IntrospectedColumn{
			Name:     fmt.Sprintf("%v", r["column_name"]),
			RawType:  fmt.Sprintf("%v", r["data_type"]),
			Nullable: fmt.Sprintf("%v", r["is_nullable"]) == "YES",
		})
	}
	return cols, nil
}

func (e *bigqueryEngine) TableExists(ctx context.Context, schema, table string) (bool, error) {
	_, err := e.client.DatasetInProject(e.projectID, schema).Table(table).Metadata(ctx)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (e *bigqueryEngine) Close() error { return e.client.Close() }
