package graph

// DetectCycle checks the graph for circular dependencies using depth-first
// search with three node colors (unvisited, in-progress, done). When an
// in-progress node is revisited, the ordered chain from that node back to
// itself is returned. A self-dependency is reported as a cycle of length 1.
// Returns nil when the graph is acyclic.
//
// Node visit order is alphabetical, so the reported cycle is deterministic.
func (g *Graph) DetectCycle() []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	color := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		color[name] = inProgress
		stack = append(stack, name)

		for _, dep := range g.nodes[name].deps {
			switch color[dep] {
			case inProgress:
				// Slice the chain from the re-entered node to the current one.
				for i, onStack := range stack {
					if onStack == dep {
						return append([]string{}, stack[i:]...)
					}
				}
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = done
		return nil
	}

	for _, name := range g.Names() {
		if color[name] == unvisited {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
