package orchestrator

import "github.com/elevata-labs/elevata-core/internal/catalog"

// ResolveExecutionOrder computes the dependency-ordered execution order for
// roots (a root being either one target dataset key, or every dataset in a
// schema/the whole catalog for --all), per spec section 4.10: a topological
// traversal of TargetDatasetInput upstream edges. noDeps restricts the
// result to exactly roots, in the order given, skipping traversal entirely.
func ResolveExecutionOrder(cat catalog.Catalog, roots []string, noDeps bool) ([]string, error) {
	if noDeps {
		return roots, nil
	}

	visited := map[string]bool{}
	var all []string
	deps := map[string][]string{}

	var collect func(key string)
	collect = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		all = append(all, key)

		var ups []string
		for _, in := range cat.TargetDatasetInputs(key) {
			if in.UpstreamTarget != "" {
				ups = append(ups, in.UpstreamTarget)
			}
		}
		deps[key] = ups
		for _, u := range ups {
			collect(u)
		}
	}
	for _, r := range roots {
		collect(r)
	}

	sorted, cycle := topologicalSort(all, deps, func(key string) string { return key })
	if cycle != nil {
		return nil, errCircularDependency(cycle)
	}
	return sorted, nil
}
