// Package generation implements the Target Generation Service (spec.md
// section 4.5): for every relevant SourceDataset and in-scope TargetSchema,
// it drafts target datasets/columns, buckets sources by their computed
// physical name, and returns the draft for the caller (internal/orchestrator
// or a metadata-editing surface outside this module's scope) to upsert into
// the catalog's store of record.
//
// The Catalog interface this compiler consumes (internal/catalog) is
// read-only by design - see catalog/model.go's package doc on treating
// metadata as an external collaborator - so this package's output is a pure
// draft value, never a catalog mutation performed in-process.
//
// Grounded on original_source/core/metadata/generation's drafting logic
// (referenced via SPEC_FULL.md's Supplemented Features section) and
// naming.py/validators.go for identifier derivation.
package generation

import (
	"fmt"
	"sort"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/naming"
)

// DraftColumn is one generated column of a DraftDataset, prior to upsert.
type DraftColumn struct {
	Name                string
	OrdinalPosition      int
	CanonicalType        string
	Length, Precision, Scale *int
	SystemRole          catalog.SystemRole
	SourceColumn         string // SourceColumn name this was mapped from, "" for technical columns
	FormerNames         []string
	SurrogateExpression string // DSL source, set on surrogate_key/foreign_key/row_hash columns
}

// DraftDataset is one generated TargetDataset, keyed for upsert lookup by
// LineageKey first (spec section 4.5's "by lineage_key ... then by name"
// rule), then by Schema+Name.
type DraftDataset struct {
	Schema      string
	Name        string
	LineageKey  string
	FormerNames []string
	Columns     []DraftColumn

	// RankedMode marks a multi-source stage bucket that needed the hidden
	// __src_rank_ord / ROW_NUMBER() consolidation path instead of a plain
	// UNION ALL, per spec section 4.5.
	RankedMode bool
	// Branches lists, for RankedMode (or plain multi-branch union) buckets,
	// each contributing SourceDataset key in rank order.
	Branches []string
}

const (
	colLoadRunID = "load_run_id"
	colLoadedAt  = "loaded_at"
	colRowHash   = "row_hash"
	colIdentity  = "source_identity_id"
)

// GenerateRaw drafts the RAW-layer target dataset for one SourceDataset:
// one-to-one columns from its integrated SourceColumns, named
// "<prefix>_<system.short_name>_<source_dataset_name>", plus the
// load_run_id/loaded_at technical tail. Raw never merges systems
// (schema.ConsolidateGroups must be false). When the schema requires a
// surrogate key (spec.md's global invariant: "every generated dataset must
// emit exactly one SK column first"), the SK is drafted at ordinal 0 and
// every PrimaryKeyColumn-flagged SourceColumn is promoted to
// catalog.RoleBusinessKey and placed immediately after it.
func GenerateRaw(schema catalog.TargetSchema, ds catalog.SourceDataset, sys catalog.SourceSystem, cols []catalog.SourceColumn, pepper string) (DraftDataset, error) {
	if schema.ConsolidateGroups {
		return DraftDataset{}, elvterr.New(elvterr.KindMetadata, "raw-like schema %q must not consolidate groups", schema.ShortName)
	}

	physicalName, err := naming.BuildPhysicalDatasetName(schema, ds, sys, nil)
	if err != nil {
		return DraftDataset{}, err
	}

	draft := DraftDataset{
		Schema:     schema.ShortName,
		Name:       physicalName,
		LineageKey: "raw:" + ds.Key(),
	}

	var integrated []catalog.SourceColumn
	for _, c := range cols {
		if c.Integrate {
			integrated = append(integrated, c)
		}
	}
	sort.Slice(integrated, func(i, j int) bool { return integrated[i].OrdinalPosition < integrated[j].OrdinalPosition })

	var bkNames []string
	var bkCols, restCols []DraftColumn
	for _, c := range integrated {
		name := naming.ResolveColumnNameConflict(naming.Sanitize(c.Name), "")
		col := DraftColumn{
			Name: name, CanonicalType: c.CanonicalType,
			Length: c.Length, Precision: c.Precision, Scale: c.Scale,
			SourceColumn: c.Name,
		}
		if c.PrimaryKeyColumn {
			col.SystemRole = catalog.RoleBusinessKey
			bkCols = append(bkCols, col)
			bkNames = append(bkNames, name)
		} else {
			restCols = append(restCols, col)
		}
	}

	pos := 0
	if schemaRequiresSurrogateKey(schema) {
		skCol, err := buildSurrogateKeyColumnDraft(physicalName, bkNames, schema.SkPolicy, pepper, pos)
		if err != nil {
			return DraftDataset{}, err
		}
		draft.Columns = append(draft.Columns, skCol)
		pos++
	}
	for i := range bkCols {
		bkCols[i].OrdinalPosition = pos
		draft.Columns = append(draft.Columns, bkCols[i])
		pos++
	}
	for i := range restCols {
		restCols[i].OrdinalPosition = pos
		draft.Columns = append(draft.Columns, restCols[i])
		pos++
	}

	draft.Columns = append(draft.Columns,
		DraftColumn{Name: colLoadRunID, OrdinalPosition: pos, SystemRole: catalog.RoleLoadRunID},
		DraftColumn{Name: colLoadedAt, OrdinalPosition: pos + 1, SystemRole: catalog.RoleLoadedAt},
	)
	return draft, nil
}

// SourceBucket groups the SourceDatasets (and their SourceSystem +
// resolved naming context) that collapse onto one physical stage/rawcore
// name.
type SourceBucket struct {
	PhysicalName string
	Members      []BucketMember
}

// BucketMember is one SourceDataset contributing to a SourceBucket.
type BucketMember struct {
	Dataset    catalog.SourceDataset
	System     catalog.SourceSystem
	Columns    []catalog.SourceColumn
	Membership *catalog.SourceDatasetGroupMembership
}

// BucketSources groups datasets consolidated into a stage/rawcore schema by
// their computed physical name, per spec section 4.5's consolidate_groups
// rule (group membership collapses rows sharing a target_short_name/
// unified_source_dataset_name; otherwise each system+dataset pair is its
// own bucket).
func BucketSources(schema catalog.TargetSchema, datasets []catalog.SourceDataset, systemsByName map[string]catalog.SourceSystem, columnsByDataset map[string][]catalog.SourceColumn, groups []catalog.SourceDatasetGroup) (map[string]SourceBucket, error) {
	buckets := map[string]SourceBucket{}
	for _, ds := range datasets {
		sys := systemsByName[ds.SourceSystem]
		physicalName, err := naming.BuildPhysicalDatasetName(schema, ds, sys, groups)
		if err != nil {
			return nil, err
		}

		var membership *catalog.SourceDatasetGroupMembership
		for gi := range groups {
			for mi := range groups[gi].Memberships {
				if groups[gi].Memberships[mi].SourceDataset == ds.Key() {
					m := groups[gi].Memberships[mi]
					membership = &m
				}
			}
		}

		b := buckets[physicalName]
		b.PhysicalName = physicalName
		b.Members = append(b.Members, BucketMember{
			Dataset: ds, System: sys, Columns: columnsByDataset[ds.Key()], Membership: membership,
		})
		buckets[physicalName] = b
	}
	return buckets, nil
}

// GenerateStageOrRawcore drafts the stage/rawcore target dataset for one
// bucket. When the bucket has a single member, the generated dataset is a
// plain one-to-one mapping; with multiple members it chooses identity mode
// (every branch carries a source_identity_id → plain UNION ALL) or ranked
// mode (attach __src_rank_ord and de-duplicate by business key via
// ROW_NUMBER()), per spec section 4.5. rawcoreLayer adds the row_hash
// technical column; stage does not. When the schema requires a surrogate
// key, it is drafted at ordinal 0 with the artificial source_identity_id
// (if present) and every PrimaryKeyColumn-flagged column promoted to
// catalog.RoleBusinessKey immediately following it.
func GenerateStageOrRawcore(schema catalog.TargetSchema, bucketName string, members []BucketMember, rawcoreLayer bool, pepper string) (DraftDataset, error) {
	if len(members) == 0 {
		return DraftDataset{}, elvterr.New(elvterr.KindMetadata, "empty bucket %q", bucketName)
	}

	draft := DraftDataset{
		Schema: schema.ShortName,
		Name:   bucketName,
	}
	lineageParts := make([]string, 0, len(members))
	for _, m := range members {
		lineageParts = append(lineageParts, m.Dataset.Key())
		draft.Branches = append(draft.Branches, m.Dataset.Key())
	}
	sort.Strings(lineageParts)
	draft.LineageKey = fmt.Sprintf("%s:%s", schema.ShortName, bucketName)

	hasAnyIdentity := false
	allHaveIdentity := true
	for _, m := range members {
		if m.Membership != nil && m.Membership.SourceIdentityID != "" {
			hasAnyIdentity = true
		} else {
			allHaveIdentity = false
		}
	}
	if len(members) > 1 && !allHaveIdentity {
		draft.RankedMode = true
		sort.Slice(draft.Branches, func(i, j int) bool {
			return rankOrdinal(members, draft.Branches[i]) < rankOrdinal(members, draft.Branches[j])
		})
	}

	type seedEntry struct {
		col  DraftColumn
		isBK bool
	}
	seedCols := make(map[string]seedEntry)
	var order []string
	seedPos := 0
	for _, m := range members {
		for _, c := range m.Columns {
			if !c.Integrate {
				continue
			}
			name := naming.Sanitize(c.Name)
			if _, exists := seedCols[name]; exists {
				continue
			}
			name = naming.ResolveColumnNameConflict(name, "")
			seedCols[name] = seedEntry{
				col: DraftColumn{
					Name: name, OrdinalPosition: seedPos, CanonicalType: c.CanonicalType,
					Length: c.Length, Precision: c.Precision, Scale: c.Scale,
					SourceColumn: c.Name,
				},
				isBK: c.PrimaryKeyColumn,
			}
			order = append(order, name)
			seedPos++
		}
	}

	var bkNames []string
	var bkCols, restCols []DraftColumn
	if hasAnyIdentity {
		bkNames = append(bkNames, colIdentity)
		bkCols = append(bkCols, DraftColumn{Name: colIdentity, SystemRole: catalog.RoleBusinessKey})
	}
	for _, name := range order {
		e := seedCols[name]
		if e.isBK {
			e.col.SystemRole = catalog.RoleBusinessKey
			bkCols = append(bkCols, e.col)
			bkNames = append(bkNames, name)
		} else {
			restCols = append(restCols, e.col)
		}
	}

	pos := 0
	if schemaRequiresSurrogateKey(schema) {
		skCol, err := buildSurrogateKeyColumnDraft(bucketName, bkNames, schema.SkPolicy, pepper, pos)
		if err != nil {
			return DraftDataset{}, err
		}
		draft.Columns = append(draft.Columns, skCol)
		pos++
	}
	for i := range bkCols {
		bkCols[i].OrdinalPosition = pos
		draft.Columns = append(draft.Columns, bkCols[i])
		pos++
	}
	for i := range restCols {
		restCols[i].OrdinalPosition = pos
		draft.Columns = append(draft.Columns, restCols[i])
		pos++
	}

	if rawcoreLayer {
		draft.Columns = append(draft.Columns, DraftColumn{Name: colRowHash, OrdinalPosition: pos, SystemRole: catalog.RoleRowHash})
		pos++
	}
	draft.Columns = append(draft.Columns,
		DraftColumn{Name: colLoadRunID, OrdinalPosition: pos, SystemRole: catalog.RoleLoadRunID},
		DraftColumn{Name: colLoadedAt, OrdinalPosition: pos + 1, SystemRole: catalog.RoleLoadedAt},
	)
	return draft, nil
}

func rankOrdinal(members []BucketMember, datasetKey string) int {
	for _, m := range members {
		if m.Dataset.Key() == datasetKey && m.Membership != nil {
			return m.Membership.SourceIdentityOrdinal
		}
	}
	return 0
}

// UpsertLookupKey returns the draft's lookup key for the upsert-by-
// lineage_key-then-name rule of spec section 4.5. hist datasets are
// excluded from lineage_key lookup for rawcore (callers look hist datasets
// up by name only, via IsHist).
func (d DraftDataset) UpsertLookupKey(isHist bool) string {
	if isHist {
		return d.Schema + "." + d.Name
	}
	if d.LineageKey != "" {
		return d.LineageKey
	}
	return d.Schema + "." + d.Name
}
