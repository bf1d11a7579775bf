package orchestrator

import (
	"strings"

	"github.com/elevata-labs/elevata-core/internal/elvterr"
)

func errCircularDependency(cycle []string) error {
	return elvterr.New(elvterr.KindMetadata, "circular target dataset dependency: %s", strings.Join(cycle, " -> "))
}
