package materialize

import (
	"context"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// Apply executes plan's steps sequentially against eng, stopping at the
// first failing step. Per spec section 4.8, non-column-evolution paths do
// not require a second introspection pass; each step is a self-contained
// statement the caller already rendered.
func Apply(ctx context.Context, eng engine.Engine, steps []Step) error {
	for _, step := range steps {
		if step.Sql == "" {
			continue
		}
		if err := eng.Execute(ctx, step.Sql); err != nil {
			return elvterr.Wrap(elvterr.KindExecution, err, "materialization step %s failed", step.Op)
		}
	}
	return nil
}
