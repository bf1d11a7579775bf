package orchestrator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSnapshotFlagsHadErrorFromResults(t *testing.T) {
	results := []DatasetResult{
		{DatasetKey: "core.c_customer", Status: StatusSuccess},
		{DatasetKey: "core.c_order", Status: StatusError, ErrorMessage: "boom"},
	}
	snap := BuildSnapshot("b1", "core.c_order", Policy{}, []string{"core.c_customer", "core.c_order"}, "fp1", results, time.Now())
	assert.True(t, snap.HadError)
	assert.Equal(t, "b1", snap.BatchRunID)
}

func TestBuildSnapshotNoErrorWhenAllSucceed(t *testing.T) {
	results := []DatasetResult{{DatasetKey: "core.c_customer", Status: StatusSuccess}}
	snap := BuildSnapshot("b1", "core.c_customer", Policy{}, []string{"core.c_customer"}, "fp1", results, time.Now())
	assert.False(t, snap.HadError)
}

func TestSnapshotToJSONRoundTrips(t *testing.T) {
	snap := BuildSnapshot("b1", "core.c_customer", Policy{Execute: true}, []string{"core.c_customer"}, "fp1",
		[]DatasetResult{{DatasetKey: "core.c_customer", Status: StatusSuccess, RowsAffected: 10}}, time.Now())

	body, err := snap.ToJSON()
	assert.NoError(t, err)

	var decoded Snapshot
	assert.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, snap.BatchRunID, decoded.BatchRunID)
	assert.Equal(t, snap.Results[0].RowsAffected, decoded.Results[0].RowsAffected)
}

func TestDiffAgainstBaselineReportsStatusAndRowChanges(t *testing.T) {
	baseline := Snapshot{Results: []DatasetResult{
		{DatasetKey: "core.c_customer", Status: StatusSuccess, RowsAffected: 5},
		{DatasetKey: "core.c_stale", Status: StatusSuccess, RowsAffected: 1},
	}}
	current := Snapshot{Results: []DatasetResult{
		{DatasetKey: "core.c_customer", Status: StatusError, RowsAffected: 5},
		{DatasetKey: "core.c_new", Status: StatusSuccess, RowsAffected: 3},
	}}

	lines := DiffAgainstBaseline(baseline, current)
	assert.Len(t, lines, 3)

	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "core.c_customer")
	assert.Contains(t, joined, "core.c_new: new in current run")
	assert.Contains(t, joined, "core.c_stale: present in baseline")
}

func TestDiffAgainstBaselineEmptyWhenIdentical(t *testing.T) {
	snap := Snapshot{Results: []DatasetResult{{DatasetKey: "core.c_customer", Status: StatusSuccess, RowsAffected: 5}}}
	assert.Empty(t, DiffAgainstBaseline(snap, snap))
}
