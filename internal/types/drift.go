package types

import "fmt"

// DriftKind classifies the relationship between a desired (catalog) type and
// an actual (introspected) physical type.
type DriftKind string

const (
	DriftEquivalent  DriftKind = "equivalent"
	DriftWidening    DriftKind = "widening"
	DriftNarrowing   DriftKind = "narrowing"
	DriftIncompatible DriftKind = "incompatible"
	DriftUnknown     DriftKind = "unknown"
)

func intEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// semanticallyEquivalent ports types_map.py's tolerant equality: missing
// decimal precision/scale on both sides of a DECIMAL/DECIMAL comparison
// counts as equivalent even though the pointers themselves differ.
func semanticallyEquivalent(desired, actual Type) bool {
	if desired.Datatype != actual.Datatype {
		return false
	}
	if desired.Datatype == Decimal {
		if desired.Precision == nil || desired.Scale == nil || actual.Precision == nil || actual.Scale == nil {
			return true
		}
		return *desired.Precision == *actual.Precision && *desired.Scale == *actual.Scale
	}
	// STRING is equivalent only with equal lengths; whether a length
	// difference is narrowing or widening is decided in ClassifyDrift's
	// STRING branch. Every other same-type pair is equivalent.
	if desired.Datatype == String {
		return intEq(desired.Length, actual.Length)
	}
	return true
}

// ClassifyDrift compares a desired (catalog) type against an actual
// (introspected) physical type and returns a drift kind plus a
// human-readable reason. Direction matters for the cross-family rules:
// classification runs from actual -> desired, matching the applier's
// question "what would it take to evolve actual into desired".
func ClassifyDrift(desired, actual Type) (DriftKind, string) {
	if desired.Datatype == "" || actual.Datatype == "" {
		return DriftUnknown, "missing datatype"
	}

	if semanticallyEquivalent(desired, actual) {
		return DriftEquivalent, "semantically equivalent"
	}

	if desired.Datatype == actual.Datatype {
		switch desired.Datatype {
		case String:
			if desired.Length == nil || actual.Length == nil {
				return DriftUnknown, "string length unknown"
			}
			if *actual.Length < *desired.Length {
				return DriftWidening, fmt.Sprintf("string length larger: actual=%d < desired=%d", *actual.Length, *desired.Length)
			}
			if *actual.Length > *desired.Length {
				return DriftNarrowing, fmt.Sprintf("string length smaller: actual=%d > desired=%d", *actual.Length, *desired.Length)
			}
			return DriftEquivalent, "same string length"

		case Decimal:
			if (desired.Precision == nil || desired.Scale == nil) && (actual.Precision == nil || actual.Scale == nil) {
				return DriftEquivalent, "decimal precision/scale unknown but same type"
			}
			if desired.Precision == nil || desired.Scale == nil || actual.Precision == nil || actual.Scale == nil {
				return DriftEquivalent, "decimal precision/scale partially unknown"
			}
			if *actual.Scale < *desired.Scale {
				return DriftWidening, fmt.Sprintf("decimal scale larger: actual=%d < desired=%d", *actual.Scale, *desired.Scale)
			}
			if *actual.Scale > *desired.Scale {
				return DriftNarrowing, fmt.Sprintf("decimal scale smaller: actual=%d > desired=%d", *actual.Scale, *desired.Scale)
			}
			if *actual.Precision < *desired.Precision {
				return DriftWidening, fmt.Sprintf("decimal precision larger: actual=%d < desired=%d", *actual.Precision, *desired.Precision)
			}
			if *actual.Precision > *desired.Precision {
				return DriftNarrowing, fmt.Sprintf("decimal precision smaller: actual=%d > desired=%d", *actual.Precision, *desired.Precision)
			}
			return DriftEquivalent, "same decimal precision/scale"

		default:
			return DriftEquivalent, "same datatype"
		}
	}

	switch [2]Canonical{actual.Datatype, desired.Datatype} {
	case [2]Canonical{Integer, BigInt}:
		return DriftWidening, "integer -> bigint"
	case [2]Canonical{BigInt, Integer}:
		return DriftNarrowing, "bigint -> integer"
	case [2]Canonical{Date, Timestamp}:
		return DriftWidening, "date -> timestamp"
	case [2]Canonical{Timestamp, Date}:
		return DriftNarrowing, "timestamp -> date (lossy)"
	case [2]Canonical{Decimal, Float}:
		return DriftWidening, "decimal -> float (lossy)"
	case [2]Canonical{Float, Decimal}:
		return DriftIncompatible, "float -> decimal (precision semantics)"
	}

	return DriftIncompatible, fmt.Sprintf("type mismatch: desired=%s actual=%s", desired.Datatype, actual.Datatype)
}

// IsSafeWidening reports whether a drift kind is one the Materialization
// Planner may apply automatically under default flags (see spec section 4.8
// and the --allow-lossy-type-drift/--fail-on-type-drift CLI gates handled in
// internal/materialize).
func IsSafeWidening(k DriftKind) bool {
	return k == DriftEquivalent || k == DriftWidening
}
