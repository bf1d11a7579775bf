// Package materialize implements the Materialization Planner & Applier
// (spec.md section 4.8): diffs a TargetDataset's declared columns against
// the live introspected physical table and emits an ordered sequence of
// typed DDL operations, classifying any type drift along the way.
//
// Grounded on sqldef's schema/generator.go shape (one ordered list of typed
// steps, diff-then-apply) generalized from full-DDL-text diffing to
// introspection-based column diffing per spec section 4.8.
package materialize

import (
	"fmt"

	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
	"github.com/elevata-labs/elevata-core/internal/types"
)

// OpKind enumerates the typed materialization operations spec section 4.8
// names.
type OpKind string

const (
	OpEnsureSchema       OpKind = "ENSURE_SCHEMA"
	OpRenameDataset      OpKind = "RENAME_DATASET"
	OpRenameColumn       OpKind = "RENAME_COLUMN"
	OpAddColumn          OpKind = "ADD_COLUMN"
	OpAlterColumnType    OpKind = "ALTER_COLUMN_TYPE"
	OpDropTableIfExists  OpKind = "DROP_TABLE_IF_EXISTS"
	OpCreateTable        OpKind = "CREATE_TABLE"
	OpInsertSelect       OpKind = "INSERT_SELECT"
	OpDropTable          OpKind = "DROP_TABLE"
	OpRenameTable        OpKind = "RENAME_TABLE"
)

// Step is one ordered, typed materialization operation.
type Step struct {
	Op       OpKind
	Sql      string
	Metadata map[string]string
}

// DesiredColumn is the planner's input shape for one TargetColumn, already
// resolved to a canonical type and former-names list by the caller (the
// orchestrator, reading from catalog.TargetColumn).
type DesiredColumn struct {
	Name        string
	Type        types.Type
	FormerNames []string
}

// Policy configures the CLI gating rules of spec section 4.8.
type Policy struct {
	NoTypeChanges      bool
	FailOnTypeDrift    bool
	AllowLossyTypeDrift bool
	FullRefresh        bool // type drift is informational only when the table is recreated
}

// Plan is the Materialization Planner's output for one TargetDataset.
type Plan struct {
	Steps          []Step
	Warnings       []string
	BlockingErrors []string
}

// Build diffs desired columns against the live introspected table and
// produces an ordered Plan. schemaExists/tableExists/actualTableName come
// from the caller's prior introspection pass (ENSURE_SCHEMA/RENAME_DATASET
// decisions are cheap enough to fold in here without a second round trip).
func Build(d dialect.Dialect, schema, tableName string, formerTableNames []string, actualTableName string, schemaExists, tableExists bool, actual []engine.IntrospectedColumn, desired []DesiredColumn, policy Policy) Plan {
	var plan Plan

	if !schemaExists {
		plan.Steps = append(plan.Steps, Step{Op: OpEnsureSchema, Sql: dialect.RenderCreateSchemaIfNotExists(d, schema)})
	}

	if tableExists && actualTableName != tableName && contains(formerTableNames, actualTableName) {
		plan.Steps = append(plan.Steps, Step{
			Op:       OpRenameDataset,
			Sql:      dialect.RenderRenameTable(d, schema, actualTableName, tableName),
			Metadata: map[string]string{"from": actualTableName, "to": tableName},
		})
	}

	if !tableExists {
		cols := make([]dialect.ColumnDef, len(desired))
		for i, dc := range desired {
			cols[i] = dialect.ColumnDef{Name: dc.Name, Type: dc.Type}
		}
		plan.Steps = append(plan.Steps, Step{Op: OpCreateTable, Sql: dialect.RenderCreateTableFromColumns(d, schema, tableName, cols)})
		return plan
	}

	actualByName := make(map[string]engine.IntrospectedColumn, len(actual))
	for _, a := range actual {
		actualByName[a.Name] = a
	}

	for _, dc := range desired {
		existing, renamedFrom, found := resolveExisting(dc, actualByName)
		if !found {
			plan.Steps = append(plan.Steps, Step{Op: OpAddColumn, Sql: dialect.RenderAddColumn(d, schema, tableName, dialect.ColumnDef{Name: dc.Name, Type: dc.Type})})
			continue
		}

		if renamedFrom != "" {
			plan.Steps = append(plan.Steps, Step{
				Op:       OpRenameColumn,
				Sql:      dialect.RenderRenameColumn(d, schema, tableName, renamedFrom, dc.Name),
				Metadata: map[string]string{"from": renamedFrom, "to": dc.Name},
			})
		}

		actualType := types.Canonicalize(d.Name(), existing.RawType)
		kind, detail := types.ClassifyDrift(dc.Type, actualType)
		if kind == types.DriftEquivalent {
			continue
		}

		plan.Warnings = append(plan.Warnings, fmt.Sprintf("TYPE_DRIFT:%s:%s", dc.Name, detail))

		if kind == types.DriftNarrowing || kind == types.DriftIncompatible {
			if !policy.AllowLossyTypeDrift && !policy.FullRefresh {
				plan.BlockingErrors = append(plan.BlockingErrors, fmt.Sprintf("UNSAFE_TYPE_DRIFT:%s:%s", dc.Name, detail))
				continue
			}
		}
		if policy.FailOnTypeDrift && !policy.FullRefresh {
			plan.BlockingErrors = append(plan.BlockingErrors, fmt.Sprintf("UNSAFE_TYPE_DRIFT:%s:%s", dc.Name, detail))
			continue
		}
		if policy.NoTypeChanges {
			if !policy.AllowLossyTypeDrift && !policy.FullRefresh {
				plan.BlockingErrors = append(plan.BlockingErrors, fmt.Sprintf("UNSAFE_TYPE_DRIFT:%s:%s", dc.Name, detail))
			}
			continue
		}

		if d.SupportsAlterColumnType() {
			plan.Steps = append(plan.Steps, Step{Op: OpAlterColumnType, Sql: dialect.RenderAlterColumnType(d, schema, tableName, dialect.ColumnDef{Name: dc.Name, Type: dc.Type})})
			continue
		}

		if !policy.FullRefresh {
			plan.BlockingErrors = append(plan.BlockingErrors, fmt.Sprintf("UNSUPPORTED_TYPE_EVOLUTION:%s:%s", dc.Name, detail))
		}
	}

	return plan
}

func resolveExisting(dc DesiredColumn, actualByName map[string]engine.IntrospectedColumn) (engine.IntrospectedColumn, string, bool) {
	if existing, ok := actualByName[dc.Name]; ok {
		return existing, "", true
	}
	for _, former := range dc.FormerNames {
		if existing, ok := actualByName[former]; ok {
			return existing, former, true
		}
	}
	return engine.IntrospectedColumn{}, "", false
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// RebuildSteps renders the DROP/CREATE/INSERT SELECT/DROP/RENAME sequence
// for a column type change that cannot be expressed as an in-place ALTER.
// Build does not emit these steps (it reports UNSUPPORTED_TYPE_EVOLUTION
// instead), and neither the orchestrator nor --allow-lossy-type-drift
// invokes RebuildSteps.
func RebuildSteps(d dialect.Dialect, schema, tableName string, desired []DesiredColumn, selectExprsSQL []string, sourceSchema, sourceTable string) ([]Step, error) {
	if len(desired) != len(selectExprsSQL) {
		return nil, elvterr.New(elvterr.KindMetadata, "rebuild requires one select expression per desired column")
	}
	tmpName := tableName + "__rebuild"
	cols := make([]dialect.ColumnDef, len(desired))
	names := make([]string, len(desired))
	for i, dc := range desired {
		cols[i] = dialect.ColumnDef{Name: dc.Name, Type: dc.Type}
		names[i] = dc.Name
	}

	return []Step{
		{Op: OpDropTableIfExists, Sql: dialect.RenderDropTableIfExists(d, schema, tmpName)},
		{Op: OpCreateTable, Sql: dialect.RenderCreateTableFromColumns(d, schema, tmpName, cols)},
		{Op: OpInsertSelect, Sql: dialect.RenderInsertSelectForRebuild(d, schema, tmpName, names, sourceSchema, sourceTable, selectExprsSQL)},
		{Op: OpDropTable, Sql: dialect.RenderDropTableIfExists(d, schema, tableName)},
		{Op: OpRenameTable, Sql: dialect.RenderRenameTable(d, schema, tmpName, tableName)},
	}, nil
}
