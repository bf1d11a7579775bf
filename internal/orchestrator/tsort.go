package orchestrator

// topologicalSort orders items so every dependency precedes its dependents,
// for resolving TargetDatasetInput upstream edges into an execution order
// (spec section 4.10). It walks items via DFS with three-color marking
// (unvisited, visiting, visited) to detect cycles in one pass.
//
// Unlike a sort that merely reports success/failure, this one also returns
// the actual cycle path (the "visiting" stack at the moment a back-edge is
// found) so callers can name the offending datasets instead of dumping every
// root under consideration.
//
// Adapted from sqldef's schema/tsort.go, which returns only an empty slice
// on a cycle with no indication of which IDs are involved; execution-order
// errors here need to tell an operator which datasets to break the loop on.
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) (sorted []T, cycle []string) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)
	var path []string

	for _, item := range items {
		itemMap[getID(item)] = item
	}

	var visit func(string) []string
	visit = func(id string) []string {
		if visiting[id] {
			// Back-edge: the cycle is the tail of path from id's first
			// occurrence onward, closed by id itself.
			for i, p := range path {
				if p == id {
					return append(append([]string{}, path[i:]...), id)
				}
			}
			return []string{id}
		}
		if visited[id] {
			return nil
		}

		visiting[id] = true
		path = append(path, id)

		for _, dep := range dependencies[id] {
			if _, exists := itemMap[dep]; exists {
				if found := visit(dep); found != nil {
					return found
				}
			}
		}

		path = path[:len(path)-1]
		visiting[id] = false
		visited[id] = true

		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return nil
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if found := visit(id); found != nil {
				return nil, found
			}
		}
	}

	return sorted, nil
}
