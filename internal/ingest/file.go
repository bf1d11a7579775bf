package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// FileConnector reads newline-delimited JSON or CSV from ds.ConnectorPath
// and loads it into the RAW target table, grounded on the teacher's
// database/file.FileDatabase: a flat file is a first-class ingestion source,
// not a special case bolted onto the driver set.
type FileConnector struct {
	Target engine.Engine
}

func (c FileConnector) Ingest(ctx context.Context, ds catalog.SourceDataset, targetSchema, targetTable string) (int64, error) {
	if ds.ConnectorPath == "" {
		return 0, elvterr.New(elvterr.KindIngest, "file ingest: dataset %s has no ConnectorPath configured", ds.Key())
	}

	f, err := os.Open(ds.ConnectorPath)
	if err != nil {
		return 0, elvterr.Wrap(elvterr.KindIngest, err, "file ingest: opening %s", ds.ConnectorPath)
	}
	defer f.Close()

	var rows []engine.Row
	if strings.HasSuffix(ds.ConnectorPath, ".csv") {
		rows, err = readCSVRows(f)
	} else {
		rows, err = readNDJSONRows(f)
	}
	if err != nil {
		return 0, elvterr.Wrap(elvterr.KindIngest, err, "file ingest: parsing %s", ds.ConnectorPath)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	statements := make([]string, 0, len(rows))
	for _, row := range rows {
		statements = append(statements, buildInsertStatement(targetSchema, targetTable, row))
	}
	if err := c.Target.ExecuteMany(ctx, statements); err != nil {
		return 0, elvterr.Wrap(elvterr.KindIngest, err, "file ingest: writing %s.%s", targetSchema, targetTable)
	}
	return int64(len(rows)), nil
}

func readCSVRows(f *os.File) ([]engine.Row, error) {
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	var rows []engine.Row
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		row := make(engine.Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readNDJSONRows(f *os.File) ([]engine.Row, error) {
	var rows []engine.Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row engine.Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
