package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
)

func fixtureCatalog() *catalog.Static {
	return catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "c_customer"},
			{Schema: "core", Name: "c_order"},
			{Schema: "mart", Name: "m_order_summary"},
		},
		DatasetEdges: []catalog.TargetDatasetInput{
			{Dataset: "core.c_order", UpstreamTarget: "core.c_customer"},
			{Dataset: "mart.m_order_summary", UpstreamTarget: "core.c_order"},
			{Dataset: "mart.m_order_summary", UpstreamTarget: "core.c_customer"},
		},
	})
}

func TestResolveExecutionOrderWalksUpstreamEdges(t *testing.T) {
	cat := fixtureCatalog()
	order, err := ResolveExecutionOrder(cat, []string{"mart.m_order_summary"}, false)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"core.c_customer", "core.c_order", "mart.m_order_summary"}, order)

	posCustomer := indexOf(order, "core.c_customer")
	posOrder := indexOf(order, "core.c_order")
	posSummary := indexOf(order, "mart.m_order_summary")
	assert.True(t, posCustomer < posOrder)
	assert.True(t, posOrder < posSummary)
}

func TestResolveExecutionOrderNoDepsSkipsTraversal(t *testing.T) {
	cat := fixtureCatalog()
	order, err := ResolveExecutionOrder(cat, []string{"mart.m_order_summary"}, true)
	assert.NoError(t, err)
	assert.Equal(t, []string{"mart.m_order_summary"}, order)
}

func TestResolveExecutionOrderDetectsCycle(t *testing.T) {
	cat := catalog.NewStatic(catalog.Static{
		TDatasets: []catalog.TargetDataset{
			{Schema: "core", Name: "a"},
			{Schema: "core", Name: "b"},
		},
		DatasetEdges: []catalog.TargetDatasetInput{
			{Dataset: "core.a", UpstreamTarget: "core.b"},
			{Dataset: "core.b", UpstreamTarget: "core.a"},
		},
	})
	_, err := ResolveExecutionOrder(cat, []string{"core.a"}, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "core.a")
	assert.Contains(t, err.Error(), "core.b")
	assert.Contains(t, err.Error(), "->", "cycle error should show the dependency chain, not just the vertex set")
}

func indexOf(xs []string, v string) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
