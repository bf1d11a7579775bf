package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/loadplan"
)

// ComputeFingerprint implements spec section 4.10's plan fingerprint: a
// sha256 digest of sort(["schema.name|mode|materialization|timestamp", …])
// over the resolved execution order. planTimestamp is fixed once at
// ResolveExecutionOrder time and threaded through every recomputation for
// the run, so the digest only changes when a dataset's derived mode or
// materialization shape actually drifts mid-run.
func ComputeFingerprint(cat catalog.Catalog, order []string, planTimestamp string) (string, error) {
	descriptors := make([]string, 0, len(order))
	for _, key := range order {
		td, ok := cat.TargetDataset(key)
		if !ok {
			return "", elvterr.New(elvterr.KindMetadata, "plan fingerprint: unresolvable target dataset %s", key)
		}
		plan := loadplan.Build(td)
		materialization := "flat"
		if td.Historize {
			materialization = "hist"
		}
		descriptors = append(descriptors, fmt.Sprintf("%s|%s|%s|%s", td.Key(), plan.Mode, materialization, planTimestamp))
	}
	sort.Strings(descriptors)

	h := sha256.Sum256([]byte(strings.Join(descriptors, "\n")))
	return hex.EncodeToString(h[:]), nil
}

// VerifyFingerprint recomputes the fingerprint for order and compares it
// against expected, failing with ExecutionPlanStale (spec section 7) on
// mismatch. Called on every dataset start per spec section 4.10.
func VerifyFingerprint(cat catalog.Catalog, order []string, planTimestamp, expected string) error {
	got, err := ComputeFingerprint(cat, order, planTimestamp)
	if err != nil {
		return err
	}
	if got != expected {
		return elvterr.New(elvterr.KindFingerprint, "ExecutionPlanStale: plan fingerprint changed mid-run (expected %s, got %s)", expected, got)
	}
	return nil
}
