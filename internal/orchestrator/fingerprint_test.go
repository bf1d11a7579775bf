package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
)

func TestComputeFingerprintStableAcrossEquivalentCatalog(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "c_customer", IncrementalStrategy: "append"},
		},
	})
	order := []string{"core.c_customer"}

	a, err := ComputeFingerprint(cat, order, "2026-07-31T00:00:00Z")
	assert.NoError(t, err)
	b, err := ComputeFingerprint(cat, order, "2026-07-31T00:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeFingerprintChangesOnHistorizeFlip(t *testing.T) {
	base := catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "c_customer", IncrementalStrategy: "append"},
		},
	}
	order := []string{"core.c_customer"}

	before, err := ComputeFingerprint(catalog.NewStatic(base), order, "ts")
	assert.NoError(t, err)

	base.TDatasets[0].Historize = true
	after, err := ComputeFingerprint(catalog.NewStatic(base), order, "ts")
	assert.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestVerifyFingerprintFailsOnMismatch(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "c_customer"},
		},
	})
	order := []string{"core.c_customer"}
	err := VerifyFingerprint(cat, order, "ts", "not-a-real-digest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ExecutionPlanStale")
}

func TestVerifyFingerprintPassesOnMatch(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "c_customer"},
		},
	})
	order := []string{"core.c_customer"}
	expected, err := ComputeFingerprint(cat, order, "ts")
	assert.NoError(t, err)
	assert.NoError(t, VerifyFingerprint(cat, order, "ts", expected))
}

func TestComputeFingerprintUnresolvableDatasetErrors(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{})
	_, err := ComputeFingerprint(cat, []string{"core.missing"}, "ts")
	assert.Error(t, err)
}
