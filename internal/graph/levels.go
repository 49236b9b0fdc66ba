package graph

import "sort"

// Levels computes the level-based topological ordering of the graph. Each
// level is an alphabetically sorted list of spec names whose dependencies
// are all assigned to earlier levels; level 0 holds the specs with no
// dependencies. Every spec appears in exactly one level.
//
// Returns a CycleError when the graph contains a circular dependency; no
// partial ordering is produced in that case.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	remaining := make(map[string]int, len(g.nodes))
	for name, n := range g.nodes {
		remaining[name] = len(n.deps)
	}

	var levels [][]string
	for len(remaining) > 0 {
		var ready []string
		for name, deg := range remaining {
			if deg == 0 {
				ready = append(ready, name)
			}
		}
		sort.Strings(ready)

		for _, name := range ready {
			delete(remaining, name)
			for _, dependent := range g.nodes[name].dependents {
				if _, ok := remaining[dependent]; ok {
					remaining[dependent]--
				}
			}
		}
		levels = append(levels, ready)
	}

	return levels, nil
}
