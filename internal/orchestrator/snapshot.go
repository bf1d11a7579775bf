package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/k0kubun/pp/v3"
)

// Snapshot is the run-level execution snapshot spec section 4.10 describes:
// build_execution_snapshot(batch_run_id, policy, plan, results, had_error,
// created_at, root_dataset_key, …), serialized to JSON for meta.load_run_snapshot
// and optionally a file.
type Snapshot struct {
	BatchRunID     string         `json:"batch_run_id"`
	RootDatasetKey string         `json:"root_dataset_key"`
	Policy         Policy         `json:"policy"`
	PlanOrder      []string       `json:"plan_order"`
	PlanFingerprint string        `json:"plan_fingerprint"`
	Results        []DatasetResult `json:"results"`
	HadError       bool           `json:"had_error"`
	CreatedAt      time.Time      `json:"created_at"`
}

// BuildSnapshot assembles a Snapshot from one completed run.
func BuildSnapshot(batchRunID, rootDatasetKey string, policy Policy, order []string, fingerprint string, results []DatasetResult, createdAt time.Time) Snapshot {
	hadError := false
	for _, r := range results {
		if r.Status == StatusError {
			hadError = true
			break
		}
	}
	return Snapshot{
		BatchRunID:      batchRunID,
		RootDatasetKey:  rootDatasetKey,
		Policy:          policy,
		PlanOrder:       order,
		PlanFingerprint: fingerprint,
		Results:         results,
		HadError:        hadError,
		CreatedAt:       createdAt,
	}
}

// ToJSON serializes the snapshot for persistence in meta.load_run_snapshot
// or a --write-execution-snapshot file.
func (s Snapshot) ToJSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatHuman renders the snapshot with k0kubun/pp's struct printer, with
// coloring disabled. The CLI does not call it: --diff-print prints
// DiffAgainstBaseline's lines and --write-execution-snapshot writes ToJSON.
func FormatHuman(s Snapshot) string {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	return printer.Sprint(s)
}

// DiffAgainstBaseline compares two snapshots dataset-by-dataset and returns
// a line per dataset whose status or rows_affected changed, per spec
// section 4.10's "--diff-against-snapshot/--diff-against-batch-run-id"
// human-readable diff.
func DiffAgainstBaseline(baseline, current Snapshot) []string {
	byKey := make(map[string]DatasetResult, len(baseline.Results))
	for _, r := range baseline.Results {
		byKey[r.DatasetKey] = r
	}

	var lines []string
	for _, cur := range current.Results {
		base, ok := byKey[cur.DatasetKey]
		if !ok {
			lines = append(lines, "+ "+cur.DatasetKey+": new in current run, status="+string(cur.Status))
			continue
		}
		if base.Status != cur.Status || base.RowsAffected != cur.RowsAffected {
			lines = append(lines, "~ "+cur.DatasetKey+": status "+string(base.Status)+" -> "+string(cur.Status)+
				", rows_affected "+itoa(base.RowsAffected)+" -> "+itoa(cur.RowsAffected))
		}
		delete(byKey, cur.DatasetKey)
	}
	for key := range byKey {
		lines = append(lines, "- "+key+": present in baseline, absent from current run")
	}
	return lines
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
