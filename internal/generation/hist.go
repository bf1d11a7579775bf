package generation

import (
	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/naming"
)

var histTechTail = []string{
	"version_started_at", "version_ended_at", "version_state", "load_run_id", "loaded_at",
}

// GenerateHist rebuilds a rawcore dataset's *_hist companion, per spec
// section 4.5: defensively recreate all hist columns in order
// [hist_sk, mirrored rawcore columns, tech tail], preserving former_names so
// the Materialization Planner emits RENAME_COLUMN instead of ADD_COLUMN,
// and copying (never recreating) row_hash from rawcore.
func GenerateHist(rawcore DraftDataset, priorFormerNames map[string][]string) (DraftDataset, error) {
	histName, err := naming.BuildHistName(rawcore.Name)
	if err != nil {
		return DraftDataset{}, err
	}
	// The hist SK is named off the hist dataset itself ("<base>_hist_key"),
	// not the rawcore SK suffixed with "_hist" ("<base>_key_hist") - see
	// spec.md's global invariant on SK naming.
	histSkName, err := naming.BuildSurrogateKeyName(histName)
	if err != nil {
		return DraftDataset{}, err
	}

	draft := DraftDataset{
		Schema:     rawcore.Schema,
		Name:       histName,
		LineageKey: "", // hist datasets are looked up by name only, see UpsertLookupKey
	}

	// hist_sk is derived from the rawcore SK (mirrored below as an entity_key
	// column under its original name) plus version_started_at, per spec.md:
	// "its own SK built from base SK + version_started_at".
	var entityKeyName string
	for _, c := range rawcore.Columns {
		if c.SystemRole == catalog.RoleSurrogateKey {
			entityKeyName = c.Name
			break
		}
	}

	pos := 0
	draft.Columns = append(draft.Columns, DraftColumn{
		Name: histSkName, OrdinalPosition: pos, CanonicalType: "STRING", Length: intPtr(64),
		SystemRole: catalog.RoleSurrogateKey, SurrogateExpression: histSurrogateKeyExpression(entityKeyName),
		FormerNames: priorFormerNames[histSkName],
	})
	pos++

	tailSet := make(map[string]bool, len(histTechTail))
	for _, t := range histTechTail {
		tailSet[t] = true
	}

	for _, c := range rawcore.Columns {
		if tailSet[c.Name] || c.Name == colLoadRunID || c.Name == colLoadedAt {
			continue // tail is rebuilt fresh; row_hash is mirrored in place
		}
		role := c.SystemRole
		if role == catalog.RoleSurrogateKey {
			role = catalog.RoleEntityKey
		}
		draft.Columns = append(draft.Columns, DraftColumn{
			Name: c.Name, OrdinalPosition: pos, CanonicalType: c.CanonicalType,
			Length: c.Length, Precision: c.Precision, Scale: c.Scale,
			SystemRole: role, SourceColumn: c.SourceColumn, FormerNames: priorFormerNames[c.Name],
		})
		pos++
	}

	for _, t := range histTechTail {
		draft.Columns = append(draft.Columns, DraftColumn{
			Name: t, OrdinalPosition: pos, FormerNames: priorFormerNames[t],
		})
		pos++
	}

	if len(draft.Columns) == 0 {
		return DraftDataset{}, elvterr.New(elvterr.KindMetadata, "hist rebuild for %q produced no columns", rawcore.Name)
	}
	return draft, nil
}
