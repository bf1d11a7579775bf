package generation

import (
	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/dsl"
	"github.com/elevata-labs/elevata-core/internal/naming"
)

// BuildForeignKeyColumnDraft drafts the child-side column a
// catalog.TargetDatasetReference generates: a system-managed FK column,
// named off the parent dataset the same way its own SK is (spec.md's
// rename-propagation invariant - renaming a dataset must move both its SK
// name and every inbound FK column name together), whose DSL expression is
// the parent's surrogate-key recipe rewritten to read from the child's own
// columns via BuildSurrogateFkExpression.
//
// parentSkExpression is the parent dataset's already-drafted SK column's
// SurrogateExpression (DSL source); childAlias is the table alias the
// child-side KeyComponent.ChildExpr strings were written against.
func BuildForeignKeyColumnDraft(ref catalog.TargetDatasetReference, parentDatasetName, parentSkExpression, childAlias string, ordinal int) (DraftColumn, error) {
	name, err := naming.BuildSurrogateKeyName(parentDatasetName)
	if err != nil {
		return DraftColumn{}, err
	}

	parentExpr, err := dsl.Parse(parentSkExpression, childAlias)
	if err != nil {
		return DraftColumn{}, err
	}

	components := make([]dsl.KeyComponent, 0, len(ref.KeyComponents))
	for _, kc := range ref.KeyComponents {
		childExpr, err := dsl.Parse(kc.ChildExpr, childAlias)
		if err != nil {
			return DraftColumn{}, err
		}
		components = append(components, dsl.KeyComponent{ParentColumn: kc.ParentColumn, ChildExpr: childExpr})
	}

	rewritten := dsl.BuildSurrogateFkExpression(parentExpr, components)
	rendered, err := dsl.Render(rewritten)
	if err != nil {
		return DraftColumn{}, err
	}

	return DraftColumn{
		Name:                name,
		OrdinalPosition:     ordinal,
		CanonicalType:       "STRING",
		Length:              intPtr(64),
		SystemRole:          catalog.RoleForeignKey,
		SurrogateExpression: rendered,
	}, nil
}
