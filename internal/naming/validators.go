package naming

import (
	"fmt"
	"strings"
)

// HealthLevel summarizes the worst finding severity for a TargetDataset.
type HealthLevel string

const (
	HealthOK       HealthLevel = "ok"
	HealthAdvisory HealthLevel = "advisory"
	HealthBlocking HealthLevel = "blocking"
)

// Finding is one health-check issue, tagged blocking or advisory.
// Grounded on original_source/core/metadata/generation/validators.py's two
// severity buckets: BLOCKING (validate_incremental_target_dataset,
// validate_semantic_join_integrity, and the broken-name/duplicate checks of
// validate_serving_friendly_names) and ADVISORY (validate_bizcore_*, and
// validate_serving_friendly_names' length checks). Supplemented feature: the
// spec's core distillation only specifies the naming/DSL/type rules; this
// summary-health view over a TargetDataset is carried over from the original
// because it is cheap. The orchestrator and the CLI do not call these
// validators.
type Finding struct {
	Blocking bool
	Message  string
}

// IncrementalTargetInput is the subset of TargetDataset/schema fields needed
// by ValidateIncrementalTargetDataset, to avoid importing the catalog
// package's full TargetDataset type into every check signature.
type IncrementalTargetInput struct {
	IncrementalStrategy string
	Materialization      string // effective materialization_type, "table" by default
	IncrementalSource    string
	NaturalKeyFields     []string
}

// ValidateIncrementalTargetDataset ports validate_incremental_target_dataset:
// a merge-strategy dataset must materialize as a table, declare an
// incremental_source, and declare at least one natural key field.
func ValidateIncrementalTargetDataset(in IncrementalTargetInput) []Finding {
	if in.IncrementalStrategy != "merge" {
		return nil
	}
	var findings []Finding
	mat := in.Materialization
	if mat == "" {
		mat = "table"
	}
	if mat != "table" {
		findings = append(findings, Finding{Blocking: true, Message: fmt.Sprintf(
			"incremental_strategy='merge' but effective materialization='%s' (expected 'table')", mat)})
	}
	if in.IncrementalSource == "" {
		findings = append(findings, Finding{Blocking: true, Message: "incremental_strategy='merge' but incremental_source is not set"})
	}
	if len(in.NaturalKeyFields) == 0 {
		findings = append(findings, Finding{Blocking: true, Message: "incremental_strategy='merge' but no natural_key_fields are defined"})
	}
	return findings
}

// BizcoreTargetInput is the subset of fields needed by
// ValidateBizcoreTargetDataset.
type BizcoreTargetInput struct {
	SchemaShortName string
	BizEntityRole   string
	BizGrainNote    string
}

// ValidateBizcoreTargetDataset ports validate_bizcore_target_dataset: an
// advisory check that bizcore datasets document their entity role and grain.
func ValidateBizcoreTargetDataset(in BizcoreTargetInput) []Finding {
	if in.SchemaShortName != "bizcore" {
		return nil
	}
	var findings []Finding
	if in.BizEntityRole == "" {
		findings = append(findings, Finding{Message: "BizCore dataset has no biz_entity_role set (expected e.g. 'core_entity', 'fact', 'dimension', 'reference')"})
	}
	if in.BizGrainNote == "" {
		findings = append(findings, Finding{Message: "BizCore dataset has no biz_grain_note set (expected a human-readable description of the business grain)"})
	}
	return findings
}

// JoinIntegrityInput is the subset of fields needed by
// ValidateSemanticJoinIntegrity.
type JoinIntegrityInput struct {
	SchemaShortName  string
	UpstreamInputIDs []string
	JoinOrders       []int    // join_order values present, should be 1..N contiguous
	JoinsMissingPredicates []int // join_order values of non-cross joins with zero predicates
	JoinsCoverInputs bool     // whether the join tree covers every upstream input
}

// ValidateSemanticJoinIntegrity ports validate_semantic_join_integrity: for
// bizcore/serving datasets with more than one active upstream input, a join
// tree must exist, be contiguous, cover every input, and every non-cross
// join must carry at least one predicate. Both bizcore and serving are
// treated as blocking (ERROR), matching the Python's explicit decision that
// "serving must be correct as well".
func ValidateSemanticJoinIntegrity(in JoinIntegrityInput) []Finding {
	if in.SchemaShortName != "bizcore" && in.SchemaShortName != "serving" {
		return nil
	}
	if len(in.UpstreamInputIDs) <= 1 {
		return nil
	}
	var findings []Finding
	if len(in.JoinOrders) == 0 {
		findings = append(findings, Finding{Blocking: true, Message: "multiple active upstream inputs but no TargetDatasetJoin rows are defined"})
		return findings
	}
	seenOrders := make(map[int]bool, len(in.JoinOrders))
	for _, o := range in.JoinOrders {
		seenOrders[o] = true
	}
	for i := 1; i <= len(in.JoinOrders); i++ {
		if !seenOrders[i] {
			findings = append(findings, Finding{Blocking: true, Message: "join_order values are not contiguous 1..N"})
			break
		}
	}
	if len(in.JoinsMissingPredicates) > 0 {
		orders := make([]string, len(in.JoinsMissingPredicates))
		for i, o := range in.JoinsMissingPredicates {
			orders[i] = fmt.Sprintf("%d", o)
		}
		findings = append(findings, Finding{Blocking: true, Message: "non-cross joins with zero predicates at join_order=" + strings.Join(orders, ",")})
	}
	if !in.JoinsCoverInputs {
		findings = append(findings, Finding{Blocking: true, Message: "join tree does not cover all active upstream inputs"})
	}
	return findings
}

// ServingFriendlyNamesInput is the subset of fields needed by
// ValidateServingFriendlyNames.
type ServingFriendlyNamesInput struct {
	SchemaShortName string
	DatasetName     string
	ColumnNames     []string // in ordinal_position order
}

// servingCleanIdentifier ports serving_clean_identifier: serving is
// presentation-facing and allows human-friendly names (spaces/case/etc.), so
// this blocks only the foot-guns that routinely break tools/pipelines -
// empty/whitespace-only, leading/trailing spaces, newline/tab characters,
// and quote characters no dialect can be trusted to escape uniformly.
func servingCleanIdentifier(value, kind string) (string, string) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Sprintf("ERROR: %s name must not be empty.", kind)
	}
	if strings.TrimSpace(value) != value {
		return "", fmt.Sprintf("ERROR: %s name must not have leading/trailing spaces.", kind)
	}
	if strings.ContainsAny(value, "\n\t\r") {
		return "", fmt.Sprintf("ERROR: %s name must not contain newline/tab characters.", kind)
	}
	if strings.ContainsAny(value, `"`+"`") {
		return "", fmt.Sprintf(`ERROR: %s name must not contain quote characters (") or (`+"`"+`).`, kind)
	}
	return value, ""
}

// servingNormalizeIdentifier ports serving_normalize_identifier:
// case-insensitive, whitespace-collapsed, to catch near-duplicates like
// "Customer  Name" vs "customer name".
func servingNormalizeIdentifier(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// ValidateServingFriendlyNames ports validate_serving_friendly_names: blocks
// obviously broken dataset/column names (control whitespace, empty after
// trim, quote characters) and duplicate column names after normalization,
// and warns (advisory) on names over the portable length thresholds
// (127 for datasets, 63 for columns). Applies only to the serving schema; every other schema
// keeps its plain identifier rules (naming.go's NAME_REGEX equivalent).
func ValidateServingFriendlyNames(in ServingFriendlyNamesInput) []Finding {
	if in.SchemaShortName != "serving" {
		return nil
	}
	var findings []Finding

	if _, errMsg := servingCleanIdentifier(in.DatasetName, "Dataset"); errMsg != "" {
		findings = append(findings, Finding{Blocking: true, Message: errMsg})
	} else if len(in.DatasetName) > 127 {
		findings = append(findings, Finding{Message: "dataset name is longer than 127 characters (tool compatibility risk)"})
	}

	seen := map[string]string{}
	for _, name := range in.ColumnNames {
		cleaned, errMsg := servingCleanIdentifier(name, "Column")
		if errMsg != "" {
			findings = append(findings, Finding{Blocking: true, Message: errMsg})
			continue
		}

		norm := servingNormalizeIdentifier(cleaned)
		if prior, ok := seen[norm]; ok {
			findings = append(findings, Finding{Blocking: true, Message: fmt.Sprintf(
				"duplicate serving column names after normalization: '%s' and '%s'", prior, cleaned)})
		} else {
			seen[norm] = cleaned
		}

		if len(cleaned) > 63 {
			findings = append(findings, Finding{Message: fmt.Sprintf(
				"column '%s' is longer than 63 characters (tool compatibility risk)", cleaned)})
		}
	}
	return findings
}

// SummarizeHealth ports summarize_targetdataset_health: overall level is
// blocking if any finding is blocking, advisory if any remain, else ok.
func SummarizeHealth(findings []Finding) HealthLevel {
	level := HealthOK
	for _, f := range findings {
		if f.Blocking {
			return HealthBlocking
		}
		level = HealthAdvisory
	}
	return level
}
