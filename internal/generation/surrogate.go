package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/naming"
)

// schemaRequiresSurrogateKey ports schema_requires_surrogate_key: a schema
// drafts an SK column iff its surrogate_keys_enabled flag is set.
func schemaRequiresSurrogateKey(schema catalog.TargetSchema) bool {
	return schema.SurrogateKeysEnabled
}

func intPtr(n int) *int { return &n }

// buildSurrogateKeyColumnDraft ports build_surrogate_key_column_draft: the SK
// column is named "<target_dataset_name>_key", typed STRING(64) (a hex
// digest), and carries a DSL surrogate_expression hashing every natural-key
// column - COALESCE'd against the schema's null token - plus a literal
// pepper, joined with the schema's separator.
func buildSurrogateKeyColumnDraft(targetDatasetName string, naturalKeyColumns []string, policy catalog.SkPolicy, pepper string, ordinal int) (DraftColumn, error) {
	name, err := naming.BuildSurrogateKeyName(targetDatasetName)
	if err != nil {
		return DraftColumn{}, err
	}
	return DraftColumn{
		Name:                name,
		OrdinalPosition:     ordinal,
		CanonicalType:       "STRING",
		Length:              intPtr(64),
		SystemRole:          catalog.RoleSurrogateKey,
		SurrogateExpression: surrogateKeyExpression(naturalKeyColumns, policy, pepper),
	}, nil
}

// surrogateKeyExpression renders the HASH256(CONCAT_WS(...)) DSL source for
// a set of natural-key column names, per spec.md's
// "HASH256(CONCAT_WS(sep, COALESCE(col, null_token), …, 'pepper'))" recipe.
// The hash order is alphabetic, independent of the columns' drafted ordinal
// position, matching the original's "hash order stays alphabetic" rule for
// the artificial source_identity_id business key.
func surrogateKeyExpression(naturalKeyColumns []string, policy catalog.SkPolicy, pepper string) string {
	algorithm := policy.Algorithm
	if algorithm == "" {
		algorithm = "HASH256"
	}
	sep := policy.Separator
	if sep == "" {
		sep = "|"
	}
	nullToken := policy.NullToken
	if nullToken == "" {
		nullToken = "null_replaced"
	}

	cols := append([]string{}, naturalKeyColumns...)
	sort.Strings(cols)

	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("COALESCE(COL(%s), '%s')", c, nullToken))
	}
	parts = append(parts, fmt.Sprintf("'%s'", pepper))
	return fmt.Sprintf("%s(CONCAT_WS('%s', %s))", algorithm, sep, strings.Join(parts, ", "))
}

// histSurrogateKeyExpression builds the hist dataset's own SK: a hash of the
// rawcore entity key plus version_started_at, so each historized version of
// an entity gets a distinct surrogate key. entityKeyName is empty when the
// rawcore dataset carries no SK (surrogate keys disabled for its schema), in
// which case the hist SK hashes version_started_at alone.
func histSurrogateKeyExpression(entityKeyName string) string {
	if entityKeyName == "" {
		return "HASH256(CONCAT_WS('|', COL(version_started_at)))"
	}
	return fmt.Sprintf("HASH256(CONCAT_WS('|', COL(%s), COL(version_started_at)))", entityKeyName)
}
