// Package elvterr defines the error taxonomy shared across the compiler and
// orchestrator. New and Wrap build errors tagged with a Kind; callers match
// on category with KindOf or errors.Is(err, AsKind(k)) and still read a
// human-readable message from Error().
package elvterr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy buckets from the spec's
// error handling design. Orchestrator retry/abort decisions are driven off
// Kind, not off the wrapped message text.
type Kind string

const (
	// KindMetadata covers malformed or inconsistent catalog metadata:
	// unresolvable dataset groups, missing dataset references, dangling
	// column inputs.
	KindMetadata Kind = "metadata"

	// KindCompile covers failures turning metadata into a logical plan:
	// DSL parse errors, query-tree contract mismatches, unresolvable
	// expressions.
	KindCompile Kind = "compile"

	// KindDialect covers a dialect renderer refusing a construct it cannot
	// render (e.g. an unknown plan/expression node or join kind, or a MERGE
	// with no key columns).
	KindDialect Kind = "dialect"

	// KindSchemaDrift covers materialization refusing to proceed because
	// live schema drifted from the catalog in a way that is not a safe
	// widening (narrowing, incompatible type change, unexpected drop).
	KindSchemaDrift Kind = "schema_drift"

	// KindExecution covers errors returned by an execution engine while
	// running DDL/DML against a live target system.
	KindExecution Kind = "execution"

	// KindFingerprint covers a plan-fingerprint mismatch detected between
	// planning time and apply time, indicating metadata drift mid-run.
	KindFingerprint Kind = "fingerprint"

	// KindIngest covers source-side ingestion failures (connectivity,
	// malformed payloads, unsupported connector kind).
	KindIngest Kind = "ingest"

	// KindConfig covers malformed CLI options, missing env vars, or
	// unreadable connection profiles.
	KindConfig Kind = "config"
)

// taggedError pairs a Kind with a wrapped cause so both
// errors.Is(err, AsKind(k)) and errors.Unwrap(err) work.
type taggedError struct {
	kind  Kind
	msg   string
	cause error
}

func (e *taggedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *taggedError) Unwrap() error { return e.cause }

// Is lets errors.Is(err, elvterr.AsKind(KindX)) match any taggedError of
// that kind, via the kindSentinel AsKind returns.
func (e *taggedError) Is(target error) bool {
	var k *kindSentinel
	if errors.As(target, &k) {
		return e.kind == k.kind
	}
	return false
}

// kindSentinel lets a bare Kind value be used as an errors.Is target via
// AsKind below.
type kindSentinel struct{ kind Kind }

func (k *kindSentinel) Error() string { return string(k.kind) }

// AsKind returns a sentinel error usable with errors.Is(err, elvterr.AsKind(KindX)).
func AsKind(k Kind) error { return &kindSentinel{kind: k} }

// New builds a new error of the given kind with a formatted message.
func New(k Kind, format string, args ...any) error {
	return &taggedError{kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a new error of the given kind wrapping cause.
func Wrap(k Kind, cause error, format string, args ...any) error {
	return &taggedError{kind: k, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the Kind of err, walking the wrap chain. Returns ("", false)
// if err was not produced by this package.
func KindOf(err error) (Kind, bool) {
	var te *taggedError
	if errors.As(err, &te) {
		return te.kind, true
	}
	return "", false
}

// Retryable reports whether an error's kind is generally safe to retry with
// backoff. Execution and ingest failures are transient by nature; metadata,
// compile, dialect, schema-drift and fingerprint failures are deterministic
// and retrying them without a metadata change would just fail again.
func Retryable(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindExecution, KindIngest:
		return true
	default:
		return false
	}
}
