package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elevata-labs/elevata-core/internal/catalog"
)

func TestBuildForeignKeyColumnDraft(t *testing.T) {
	ref := catalog.TargetDatasetReference{
		ID:            "order_to_customer",
		ParentDataset: "rawcore.rc_crm_customer",
		ChildDataset:  "rawcore.rc_erp_order",
		KeyComponents: []catalog.KeyComponent{
			{ParentColumn: "customer_id", ChildExpr: "COL(customer_id)"},
		},
	}
	parentSkExpr := "HASH256(CONCAT_WS('|', COALESCE(COL(customer_id), 'null_replaced'), 'pepper'))"

	col, err := BuildForeignKeyColumnDraft(ref, "rc_crm_customer", parentSkExpr, "o", 3)
	assert.NoError(t, err)
	assert.Equal(t, "rc_crm_customer_key", col.Name)
	assert.Equal(t, catalog.RoleForeignKey, col.SystemRole)
	assert.Equal(t, 3, col.OrdinalPosition)
	assert.Contains(t, col.SurrogateExpression, "HASH256")
	assert.Contains(t, col.SurrogateExpression, "COL(customer_id)")
}

func rawSchema() catalog.TargetSchema {
	return catalog.TargetSchema{ShortName: "raw", PhysicalPrefix: "raw", ConsolidateGroups: false}
}

func TestGenerateRawBuildsPrefixedNameAndTechnicalTail(t *testing.T) {
	ds := catalog.SourceDataset{SourceSystem: "erp", SchemaName: "sales", SourceDatasetName: "orders"}
	sys := catalog.SourceSystem{ShortName: "erp"}
	cols := []catalog.SourceColumn{
		{Dataset: ds.Key(), Name: "order_id", OrdinalPosition: 1, Integrate: true, CanonicalType: "BIGINT"},
		{Dataset: ds.Key(), Name: "internal_flag", OrdinalPosition: 2, Integrate: false},
	}
	draft, err := GenerateRaw(rawSchema(), ds, sys, cols, "pepper")
	assert.NoError(t, err)
	assert.Equal(t, "raw_erp_orders", draft.Name)
	assert.Len(t, draft.Columns, 3) // order_id + load_run_id + loaded_at
	assert.Equal(t, "order_id", draft.Columns[0].Name)
	assert.Equal(t, "load_run_id", draft.Columns[1].Name)
	assert.Equal(t, "loaded_at", draft.Columns[2].Name)
}

func TestGenerateRawRejectsConsolidatingSchema(t *testing.T) {
	schema := rawSchema()
	schema.ConsolidateGroups = true
	_, err := GenerateRaw(schema, catalog.SourceDataset{}, catalog.SourceSystem{}, nil, "pepper")
	assert.Error(t, err)
}

func TestGenerateRawDraftsSurrogateKeyFirstWhenEnabled(t *testing.T) {
	schema := rawSchema()
	schema.SurrogateKeysEnabled = true
	ds := catalog.SourceDataset{SourceSystem: "erp", SchemaName: "sales", SourceDatasetName: "orders"}
	sys := catalog.SourceSystem{ShortName: "erp"}
	cols := []catalog.SourceColumn{
		{Dataset: ds.Key(), Name: "order_id", OrdinalPosition: 1, Integrate: true, CanonicalType: "BIGINT", PrimaryKeyColumn: true},
		{Dataset: ds.Key(), Name: "amount", OrdinalPosition: 2, Integrate: true, CanonicalType: "DECIMAL"},
	}
	draft, err := GenerateRaw(schema, ds, sys, cols, "s3cr3t")
	assert.NoError(t, err)

	assert.Equal(t, "raw_erp_orders_key", draft.Columns[0].Name)
	assert.Equal(t, catalog.RoleSurrogateKey, draft.Columns[0].SystemRole)
	assert.Equal(t, 0, draft.Columns[0].OrdinalPosition)
	assert.Contains(t, draft.Columns[0].SurrogateExpression, "HASH256")
	assert.Contains(t, draft.Columns[0].SurrogateExpression, "COL(order_id)")
	assert.Contains(t, draft.Columns[0].SurrogateExpression, "'s3cr3t'")

	assert.Equal(t, "order_id", draft.Columns[1].Name)
	assert.Equal(t, catalog.RoleBusinessKey, draft.Columns[1].SystemRole)
	assert.Equal(t, "amount", draft.Columns[2].Name)
}

func TestGenerateStageOrRawcoreSingleMemberIsNotRanked(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "rawcore", PhysicalPrefix: "rc", ConsolidateGroups: true}
	member := BucketMember{
		Dataset: catalog.SourceDataset{SourceSystem: "erp", SourceDatasetName: "customer"},
		Columns: []catalog.SourceColumn{{Name: "customer_id", Integrate: true, CanonicalType: "BIGINT"}},
	}
	draft, err := GenerateStageOrRawcore(schema, "rc_crm_customer", []BucketMember{member}, true, "pepper")
	assert.NoError(t, err)
	assert.False(t, draft.RankedMode)

	var hasRowHash bool
	for _, c := range draft.Columns {
		if c.Name == "row_hash" {
			hasRowHash = true
		}
	}
	assert.True(t, hasRowHash)
}

func TestGenerateStageOrRawcoreMultiMemberWithoutIdentityUsesRankedMode(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "rawcore", PhysicalPrefix: "rc", ConsolidateGroups: true}
	members := []BucketMember{
		{Dataset: catalog.SourceDataset{SourceSystem: "erp", SourceDatasetName: "customer"}},
		{Dataset: catalog.SourceDataset{SourceSystem: "crm", SourceDatasetName: "account"}},
	}
	draft, err := GenerateStageOrRawcore(schema, "rc_party_customer", members, true, "pepper")
	assert.NoError(t, err)
	assert.True(t, draft.RankedMode)
	assert.Len(t, draft.Branches, 2)
}

func TestGenerateStageOrRawcoreMultiMemberWithIdentityUsesUnionMode(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "rawcore", PhysicalPrefix: "rc", ConsolidateGroups: true}
	m1 := catalog.SourceDatasetGroupMembership{SourceIdentityID: "cust_id"}
	m2 := catalog.SourceDatasetGroupMembership{SourceIdentityID: "acct_id"}
	members := []BucketMember{
		{Dataset: catalog.SourceDataset{SourceSystem: "erp", SourceDatasetName: "customer"}, Membership: &m1},
		{Dataset: catalog.SourceDataset{SourceSystem: "crm", SourceDatasetName: "account"}, Membership: &m2},
	}
	draft, err := GenerateStageOrRawcore(schema, "rc_party_customer", members, true, "pepper")
	assert.NoError(t, err)
	assert.False(t, draft.RankedMode)

	var hasIdentity bool
	for _, c := range draft.Columns {
		if c.Name == colIdentity {
			hasIdentity = true
		}
	}
	assert.True(t, hasIdentity)
}

func TestGenerateStageOrRawcoreDraftsSurrogateKeyFirstWhenEnabled(t *testing.T) {
	schema := catalog.TargetSchema{ShortName: "rawcore", PhysicalPrefix: "rc", ConsolidateGroups: true, SurrogateKeysEnabled: true}
	member := BucketMember{
		Dataset: catalog.SourceDataset{SourceSystem: "erp", SourceDatasetName: "customer"},
		Columns: []catalog.SourceColumn{
			{Name: "customer_id", Integrate: true, CanonicalType: "BIGINT", PrimaryKeyColumn: true},
			{Name: "email", Integrate: true, CanonicalType: "STRING"},
		},
	}
	draft, err := GenerateStageOrRawcore(schema, "rc_crm_customer", []BucketMember{member}, true, "pepper")
	assert.NoError(t, err)

	assert.Equal(t, "rc_crm_customer_key", draft.Columns[0].Name)
	assert.Equal(t, catalog.RoleSurrogateKey, draft.Columns[0].SystemRole)
	assert.Contains(t, draft.Columns[0].SurrogateExpression, "COL(customer_id)")

	assert.Equal(t, "customer_id", draft.Columns[1].Name)
	assert.Equal(t, catalog.RoleBusinessKey, draft.Columns[1].SystemRole)
}

func TestGenerateHistPreservesRowHashAndFormerNames(t *testing.T) {
	rawcore := DraftDataset{
		Schema: "rawcore", Name: "rc_crm_customer",
		Columns: []DraftColumn{
			{Name: "rc_crm_customer_key", SystemRole: catalog.RoleSurrogateKey, SurrogateExpression: "HASH256(CONCAT_WS('|', COL(customer_id), 'pepper'))"},
			{Name: "email"},
			{Name: "row_hash", SystemRole: catalog.RoleRowHash},
			{Name: "load_run_id", SystemRole: catalog.RoleLoadRunID},
			{Name: "loaded_at", SystemRole: catalog.RoleLoadedAt},
		},
	}
	former := map[string][]string{"email": {"email_address"}}
	hist, err := GenerateHist(rawcore, former)
	assert.NoError(t, err)
	assert.Equal(t, "rc_crm_customer_hist", hist.Name)

	// the hist SK is named off the hist dataset, not the rawcore SK suffixed
	// with "_hist" - "rc_crm_customer_hist_key", not "rc_crm_customer_key_hist".
	assert.Equal(t, "rc_crm_customer_hist_key", hist.Columns[0].Name)
	assert.Equal(t, catalog.RoleSurrogateKey, hist.Columns[0].SystemRole)
	assert.Contains(t, hist.Columns[0].SurrogateExpression, "COL(rc_crm_customer_key)")
	assert.Contains(t, hist.Columns[0].SurrogateExpression, "COL(version_started_at)")

	names := make([]string, len(hist.Columns))
	for i, c := range hist.Columns {
		names[i] = c.Name
	}
	assert.Contains(t, names, "row_hash")
	assert.Equal(t, "loaded_at", hist.Columns[len(hist.Columns)-1].Name)

	var entityKeyCol, emailCol *DraftColumn
	for i := range hist.Columns {
		switch hist.Columns[i].Name {
		case "rc_crm_customer_key":
			entityKeyCol = &hist.Columns[i]
		case "email":
			emailCol = &hist.Columns[i]
		}
	}
	assert.NotNil(t, entityKeyCol, "mirrored rawcore SK column must survive into hist")
	assert.Equal(t, catalog.RoleEntityKey, entityKeyCol.SystemRole, "mirrored SK role swaps to entity_key in hist")

	assert.NotNil(t, emailCol)
	assert.Equal(t, []string{"email_address"}, emailCol.FormerNames)
}
