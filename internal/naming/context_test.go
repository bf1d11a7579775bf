package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
)

func TestResolveDatasetGroupContextRaw(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "raw", PhysicalPrefix: "raw", ConsolidateGroups: false}
	sys := catalog.SourceSystem{ShortName: "sap1", TargetShortName: "sap"}
	ds := catalog.SourceDataset{SourceSystem: "sap1", SourceDatasetName: "KNA1"}

	ctx := ResolveDatasetGroupContext(ds, sys, schema, nil)
	assert.Nil(t, ctx.Group)
	assert.Equal(t, "sap1", ctx.ShortName)
	assert.Equal(t, "kna1", ctx.BaseName)

	name, err := BuildPhysicalDatasetName(schema, ds, sys, nil)
	assert.NoError(t, err)
	assert.Equal(t, "raw_sap1_kna1", name)
}

func TestResolveDatasetGroupContextStageWithGroup(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "stage", PhysicalPrefix: "stg", ConsolidateGroups: true}
	sys1 := catalog.SourceSystem{ShortName: "sap1", TargetShortName: "sap"}
	ds1 := catalog.SourceDataset{SourceSystem: "sap1", SourceDatasetName: "KNA1"}

	groups := []catalog.SourceDatasetGroup{
		{
			Name:                     "g1",
			TargetShortName:          "sap",
			UnifiedSourceDatasetName: "kna1",
			Memberships: []catalog.SourceDatasetGroupMembership{
				{Group: "g1", SourceDataset: ds1.Key(), SourceIdentityID: "sap1"},
			},
		},
	}

	ctx := ResolveDatasetGroupContext(ds1, sys1, schema, groups)
	assert.NotNil(t, ctx.Group)
	assert.Equal(t, "sap", ctx.ShortName)
	assert.Equal(t, "kna1", ctx.BaseName)

	name, err := BuildPhysicalDatasetName(schema, ds1, sys1, groups)
	assert.NoError(t, err)
	assert.Equal(t, "stg_sap_kna1", name)
}

func TestResolveDatasetGroupContextStageWithoutGroup(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "stage", PhysicalPrefix: "stg", ConsolidateGroups: true}
	sys := catalog.SourceSystem{ShortName: "crm1", TargetShortName: "crm"}
	ds := catalog.SourceDataset{SourceSystem: "crm1", SourceDatasetName: "account"}

	ctx := ResolveDatasetGroupContext(ds, sys, schema, nil)
	assert.Nil(t, ctx.Group)
	assert.Equal(t, "crm", ctx.ShortName)
	assert.Equal(t, "account", ctx.BaseName)
}
