package loadplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
)

func TestBuildDefaultsToFullWhenStrategyEmpty(t *testing.T) {
	p := Build(catalog.TargetDataset{Schema: "rawcore"})
	assert.Equal(t, ModeFull, p.Mode)
	assert.Empty(t, p.IncrementalSource)
}

func TestDeleteDetectionRequiresMergeHandleDeletesAndRawcore(t *testing.T) {
	base := catalog.TargetDataset{
		Schema:              "rawcore",
		IncrementalStrategy: "merge",
		HandleDeletes:       true,
		IncrementalSource:   "erp.sales.orders",
	}
	p := Build(base)
	assert.True(t, p.DeleteDetectionEnabled)
	assert.Equal(t, "erp.sales.orders", p.IncrementalSource)

	notRawcore := base
	notRawcore.Schema = "bizcore"
	assert.False(t, Build(notRawcore).DeleteDetectionEnabled)

	noHandleDeletes := base
	noHandleDeletes.HandleDeletes = false
	assert.False(t, Build(noHandleDeletes).DeleteDetectionEnabled)

	notMerge := base
	notMerge.IncrementalStrategy = "append"
	assert.False(t, Build(notMerge).DeleteDetectionEnabled)
}

func TestFullModeClearsIncrementalSourceForLogging(t *testing.T) {
	p := Build(catalog.TargetDataset{
		Schema:              "rawcore",
		IncrementalStrategy: "full",
		IncrementalSource:   "erp.sales.orders",
	})
	assert.Equal(t, ModeFull, p.Mode)
	assert.Empty(t, p.IncrementalSource)
}
