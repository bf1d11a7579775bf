// Package ingest implements the RAW-layer ingestion dispatcher (spec
// section 4.10 step 1): resolve_ingest_mode(source_dataset) picks one of
// native/external/none, and the native path further dispatches to a
// relational, file, or REST connector.
//
// Grounded on the teacher's database/file adapter (a flat file treated as a
// first-class Database implementation, not a special case bolted onto the
// main driver set) and on original_source's ingestion connectors (kept
// behind the same three-way dispatch rather than ported file-for-file).
package ingest

import (
	"context"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

// Mode is the top-level ingestion dispatch outcome for one SourceDataset.
type Mode string

const (
	ModeNative   Mode = "native"
	ModeExternal Mode = "external"
	ModeNone     Mode = "none"
)

// ConnectorKind is the native path's sub-dispatch.
type ConnectorKind string

const (
	ConnectorRelational ConnectorKind = "relational"
	ConnectorFile       ConnectorKind = "file"
	ConnectorRest       ConnectorKind = "rest"
)

// ResolveIngestMode implements resolve_ingest_mode: an inactive or
// non-integrated dataset is skipped entirely; a dataset whose connector_kind
// is "external" is assumed already landed by an out-of-band warehouse-native
// load (e.g. Snowpipe, a cloud-native COPY INTO job) and is a no-op success;
// everything else dispatches to the native connector chosen by ConnectorKind
// (defaulting to relational).
func ResolveIngestMode(ds catalog.SourceDataset) Mode {
	if !ds.Active || !ds.Integrate {
		return ModeNone
	}
	if ds.ConnectorKind == "external" {
		return ModeExternal
	}
	return ModeNative
}

func resolveConnectorKind(ds catalog.SourceDataset) ConnectorKind {
	switch ds.ConnectorKind {
	case "file":
		return ConnectorFile
	case "rest":
		return ConnectorRest
	default:
		return ConnectorRelational
	}
}

// Result reports the outcome of one ingestion run for logging into
// meta.load_run_log.
type Result struct {
	Mode          Mode
	ConnectorKind ConnectorKind
	RowsIngested  int64
	Skipped       bool
}

// Connector performs the native-path data movement into a RAW target table.
// Engine-backed relational ingestion, file ingestion, and REST ingestion
// each implement this the same way regardless of caller.
type Connector interface {
	Ingest(ctx context.Context, ds catalog.SourceDataset, targetSchema, targetTable string) (rowsIngested int64, err error)
}

// Dispatch resolves ds's ingest mode and, for native mode, picks a
// connector from connectors keyed by ConnectorKind. external/none are
// handled without consulting connectors at all, per spec section 4.10 step 1.
func Dispatch(ctx context.Context, ds catalog.SourceDataset, targetSchema, targetTable string, connectors map[ConnectorKind]Connector) (Result, error) {
	mode := ResolveIngestMode(ds)
	switch mode {
	case ModeNone:
		return Result{Mode: mode, Skipped: true}, nil
	case ModeExternal:
		return Result{Mode: mode, Skipped: false}, nil
	}

	kind := resolveConnectorKind(ds)
	conn, ok := connectors[kind]
	if !ok {
		return Result{}, elvterr.New(elvterr.KindIngest, "no ingestion connector registered for kind %q (dataset %s)", kind, ds.Key())
	}
	rows, err := conn.Ingest(ctx, ds, targetSchema, targetTable)
	if err != nil {
		return Result{}, elvterr.Wrap(elvterr.KindIngest, err, "ingestion failed for %s via %s connector", ds.Key(), kind)
	}
	return Result{Mode: mode, ConnectorKind: kind, RowsIngested: rows}, nil
}
