package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

func TestResolveIngestModeSkipsInactiveOrNonIntegrated(t *testing.T) {
	assert.Equal(t, ModeNone, ResolveIngestMode(catalog.SourceDataset{Active: false, Integrate: true}))
	assert.Equal(t, ModeNone, ResolveIngestMode(catalog.SourceDataset{Active: true, Integrate: false}))
}

func TestResolveIngestModeExternalIsNoOp(t *testing.T) {
	ds := catalog.SourceDataset{Active: true, Integrate: true, ConnectorKind: "external"}
	assert.Equal(t, ModeExternal, ResolveIngestMode(ds))
}

func TestResolveIngestModeDefaultsToNativeRelational(t *testing.T) {
	ds := catalog.SourceDataset{Active: true, Integrate: true}
	assert.Equal(t, ModeNative, ResolveIngestMode(ds))
	assert.Equal(t, ConnectorRelational, resolveConnectorKind(ds))
}

type stubConnector struct {
	rows int64
	err  error
}

func (s stubConnector) Ingest(ctx context.Context, ds catalog.SourceDataset, schema, table string) (int64, error) {
	return s.rows, s.err
}

func TestDispatchNoneSkipsWithoutConnector(t *testing.T) {
	ds := catalog.SourceDataset{Active: false, Integrate: true}
	res, err := Dispatch(context.Background(), ds, "raw", "raw_erp_orders", nil)
	assert.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, ModeNone, res.Mode)
}

func TestDispatchNativeUsesRegisteredConnector(t *testing.T) {
	ds := catalog.SourceDataset{Active: true, Integrate: true}
	connectors := map[ConnectorKind]Connector{ConnectorRelational: stubConnector{rows: 42}}
	res, err := Dispatch(context.Background(), ds, "raw", "raw_erp_orders", connectors)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), res.RowsIngested)
	assert.Equal(t, ConnectorRelational, res.ConnectorKind)
}

func TestDispatchMissingConnectorIsIngestError(t *testing.T) {
	ds := catalog.SourceDataset{Active: true, Integrate: true, ConnectorKind: "file"}
	_, err := Dispatch(context.Background(), ds, "raw", "raw_erp_orders", nil)
	assert.Error(t, err)
	k, ok := elvterr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, elvterr.KindIngest, k)
}
