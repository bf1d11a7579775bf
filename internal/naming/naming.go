// Package naming implements deterministic identifier sanitation and the
// name-derivation rules used by the Target Generation Service: sanitize,
// validate, and the build{PhysicalName,HistName,SurrogateKeyName} family.
//
// Grounded on original_source/core/metadata/generation/naming.py and
// validators.py, translated from Django model lookups into plain functions
// over the catalog package's structs, and on schema/identifier.go's
// per-dialect case-folding idiom (teacher file, sqldef) for ToDialectCase.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

var (
	validIdentRe  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	invalidCharsRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	repeatedUnderscoreRe = regexp.MustCompile(`_+`)
)

var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
	"ß", "ss",
)

// Sanitize normalizes free-form text into a safe identifier: trim,
// transliterate German umlauts, strip non-ASCII via decomposition, replace
// runs of non [a-z0-9] with underscore, collapse repeats, trim underscores,
// lowercase. It does not validate the result - call Validate separately, or
// use SanitizeAndValidate.
func Sanitize(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = umlautReplacer.Replace(cleaned)
	cleaned = stripNonASCII(cleaned)
	cleaned = invalidCharsRe.ReplaceAllString(cleaned, "_")
	cleaned = repeatedUnderscoreRe.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	cleaned = strings.ToLower(cleaned)
	return cleaned
}

// stripNonASCII approximates Python's NFKD-then-ascii-ignore step: it
// decomposes runes with a diacritic into their base rune and drops anything
// that still isn't plain ASCII after that.
func stripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if base, ok := decomposeBase(r); ok && base < unicode.MaxASCII {
			b.WriteRune(base)
		}
		// else: drop the rune entirely, matching ascii/ignore
	}
	return b.String()
}

// decomposeBase strips common Latin diacritics by returning the base rune.
// This is not a full Unicode NFKD table, only covers the accented Latin
// letters likely to appear in catalog free text; anything else is dropped,
// matching the Python original's "ignore" policy for truly exotic scripts.
func decomposeBase(r rune) (rune, bool) {
	bases := map[rune]rune{
		'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'å': 'a', 'ā': 'a',
		'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e',
		'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
		'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ō': 'o',
		'ù': 'u', 'ú': 'u', 'û': 'u', 'ū': 'u',
		'ñ': 'n', 'ç': 'c', 'ý': 'y',
	}
	b, ok := bases[r]
	return b, ok
}

// Validate enforces ^[a-z_][a-z0-9_]*$.
func Validate(name string) error {
	if !validIdentRe.MatchString(name) {
		return elvterr.New(elvterr.KindMetadata, "NameValidationError: %q does not match ^[a-z_][a-z0-9_]*$", name)
	}
	return nil
}

// SanitizeAndValidate sanitizes raw and validates the result, returning the
// NameValidationError if sanitation still produced an invalid identifier
// (e.g. raw had no [a-z0-9] characters at all).
func SanitizeAndValidate(raw string) (string, error) {
	clean := Sanitize(raw)
	if err := Validate(clean); err != nil {
		return "", err
	}
	return clean, nil
}

// BuildPhysicalName joins sanitized name parts with "_" and validates the
// result. prefix/short/base correspond to the schema's physical_prefix,
// the resolved short_name, and the resolved base_name from
// ResolveDatasetGroupContext.
func BuildPhysicalName(prefix, short, base string) (string, error) {
	p := Sanitize(prefix)
	s := Sanitize(short)
	b := Sanitize(base)
	candidate := p + "_" + s + "_" + b
	if err := Validate(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// BuildHistName returns "<base>_hist", validated.
func BuildHistName(baseTableName string) (string, error) {
	candidate := baseTableName + "_hist"
	if err := Validate(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// BuildSurrogateKeyName returns "<target_dataset_name>_key", validated.
func BuildSurrogateKeyName(targetDatasetName string) (string, error) {
	base := Sanitize(targetDatasetName)
	candidate := base + "_key"
	if err := Validate(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// DatasetGroupContext is the resolved naming context for a SourceDataset
// within a given TargetSchema: which group (if any) it belongs to, and the
// sanitized short_name/base_name to combine into a physical name.
type DatasetGroupContext struct {
	Group     *catalog.SourceDatasetGroup
	ShortName string
	BaseName  string
}

// ResolveDatasetGroupContext decides the short_name/base_name naming parts
// for a SourceDataset within a TargetSchema, per naming.py's
// resolve_dataset_group_context. sys is the SourceDataset's owning
// SourceSystem; groups is searched for a membership naming ds.
func ResolveDatasetGroupContext(ds catalog.SourceDataset, sys catalog.SourceSystem, schema catalog.TargetSchema, groups []catalog.SourceDatasetGroup) DatasetGroupContext {
	if !schema.ConsolidateGroups {
		// RAW-like: never merge systems, use the physical system short_name.
		return DatasetGroupContext{
			Group:     nil,
			ShortName: Sanitize(sys.ShortName),
			BaseName:  Sanitize(ds.SourceDatasetName),
		}
	}

	// STAGE/RAWCORE-like: consolidation allowed. Prefer a group membership.
	var matched *catalog.SourceDatasetGroup
	for i := range groups {
		for _, m := range groups[i].Memberships {
			if m.SourceDataset == ds.Key() {
				matched = &groups[i]
				break
			}
		}
		if matched != nil {
			break
		}
	}

	if matched != nil {
		return DatasetGroupContext{
			Group:     matched,
			ShortName: Sanitize(matched.TargetShortName),
			BaseName:  Sanitize(matched.UnifiedSourceDatasetName),
		}
	}

	return DatasetGroupContext{
		Group:     nil,
		ShortName: Sanitize(sys.TargetShortName),
		BaseName:  Sanitize(ds.SourceDatasetName),
	}
}

// BuildPhysicalDatasetName builds the final physical table name for a
// SourceDataset materialized into a TargetSchema.
func BuildPhysicalDatasetName(schema catalog.TargetSchema, ds catalog.SourceDataset, sys catalog.SourceSystem, groups []catalog.SourceDatasetGroup) (string, error) {
	ctx := ResolveDatasetGroupContext(ds, sys, schema, groups)
	return BuildPhysicalName(schema.PhysicalPrefix, ctx.ShortName, ctx.BaseName)
}

// DialectCase is the identifier case-folding policy a dialect applies to
// generated physical names before quoting - grounded on sqldef's
// schema/identifier.go NormalizeIdentifierName, which folds per-dialect
// because some engines (Snowflake) canonicalize unquoted identifiers to
// upper case while others (Postgres, DuckDB, BigQuery, Databricks) fold to
// lower case.
type DialectCase int

const (
	CaseLower DialectCase = iota
	CaseUpper
)

// ToDialectCase applies a dialect's identifier case-folding policy to an
// already-sanitized name.
func ToDialectCase(name string, c DialectCase) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(name)
	default:
		return strings.ToLower(name)
	}
}

// ReservedTechnicalNames is the set of reserved technical column names that
// any source-mapped column must not collide with (see naming-conflict
// protection in spec section 4.5); collisions are renamed "<orig>_src".
var ReservedTechnicalNames = map[string]bool{
	"load_run_id":        true,
	"loaded_at":          true,
	"row_hash":           true,
	"version_started_at": true,
	"version_ended_at":   true,
	"version_state":      true,
	"source_identity_id": true,
}

// ResolveColumnNameConflict renames a source-mapped column "<orig>_src" if
// it collides with a reserved technical name or the dataset's own surrogate
// key column name.
func ResolveColumnNameConflict(origName, datasetSkColumnName string) string {
	if ReservedTechnicalNames[origName] || origName == datasetSkColumnName {
		return origName + "_src"
	}
	return origName
}
