// Package loadplan implements the Load Planner (spec.md section 4.9): for a
// single TargetDataset it derives the execution mode, delete-handling, and
// historization flags the Execution Orchestrator needs before it renders or
// runs any SQL.
package loadplan

import "github.com/elevata-labs/elevata-core/internal/catalog"

// Mode is the resolved load mode for one TargetDataset run.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeAppend    Mode = "append"
	ModeMerge     Mode = "merge"
	ModeSnapshot  Mode = "snapshot"
	ModeHistorize Mode = "historize"
)

// Plan is the Load Planner's output for one TargetDataset.
type Plan struct {
	Mode                   Mode
	HandleDeletes          bool
	Historize              bool
	DeleteDetectionEnabled bool

	// IncrementalSource is cleared (empty) when Mode is full, per spec
	// section 4.9, so orchestration logging never reports a delta source
	// for a full-refresh run.
	IncrementalSource string
}

// Build derives the Plan for td, grounded on spec.md section 4.9:
// mode comes straight from IncrementalStrategy; DeleteDetectionEnabled
// requires mode==merge, HandleDeletes, and schema=="rawcore"; a full-mode
// plan clears IncrementalSource for logging purposes.
func Build(td catalog.TargetDataset) Plan {
	mode := Mode(td.IncrementalStrategy)
	if mode == "" {
		mode = ModeFull
	}

	p := Plan{
		Mode:              mode,
		HandleDeletes:     td.HandleDeletes,
		Historize:         td.Historize,
		IncrementalSource: td.IncrementalSource,
	}
	p.DeleteDetectionEnabled = mode == ModeMerge && td.HandleDeletes && td.Schema == "rawcore"

	if mode == ModeFull {
		p.IncrementalSource = ""
	}
	return p
}
