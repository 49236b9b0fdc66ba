// Package graph builds the dependency graph for one batch of specs and
// computes its level-based topological ordering. A graph is built fresh per
// batch, validated once, and never mutated afterwards.
package graph

import (
	"context"
	"sort"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/spec"
)

// Graph is the validated dependency graph for one batch.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by spec name.
	nodes map[string]*node
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using spec names),
// not by direct struct manipulation.
type node struct {
	name string
	// deps holds the sorted names of specs this node depends on.
	deps []string
	// dependents holds the sorted names of specs depending on this node.
	dependents []string
}

// Build constructs a graph from the given specs and validates that every
// declared dependency resolves to a spec in the same batch. All unresolved
// references are collected into a single UnresolvedError. Cycle detection is
// deferred to Levels, so a caller that only needs structural queries can
// still inspect a cyclic graph.
func Build(ctx context.Context, specs []*spec.Spec) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building dependency graph.", "spec_count", len(specs))

	g := &Graph{nodes: make(map[string]*node, len(specs))}
	for _, s := range specs {
		g.nodes[s.Name] = &node{name: s.Name}
	}

	var missing []MissingDep
	for _, s := range specs {
		n := g.nodes[s.Name]
		seen := make(map[string]struct{}, len(s.DependsOn))
		for _, dep := range s.DependsOn {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			target, ok := g.nodes[dep]
			if !ok {
				missing = append(missing, MissingDep{Spec: s.Name, Missing: dep})
				continue
			}
			n.deps = append(n.deps, dep)
			target.dependents = append(target.dependents, s.Name)
		}
	}

	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool {
			if missing[i].Spec != missing[j].Spec {
				return missing[i].Spec < missing[j].Spec
			}
			return missing[i].Missing < missing[j].Missing
		})
		return nil, &UnresolvedError{Missing: missing}
	}

	// Sorted adjacency gives deterministic traversal and level output.
	for _, n := range g.nodes {
		sort.Strings(n.deps)
		sort.Strings(n.dependents)
	}

	logger.Debug("Dependency graph built.", "node_count", len(g.nodes))
	return g, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Names returns all spec names in the graph, sorted alphabetically.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns the sorted dependency names of the given spec, or nil
// if the spec is not in the graph.
func (g *Graph) Dependencies(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	return append([]string{}, n.deps...)
}

// Dependents returns the sorted names of specs that depend on the given
// spec, or nil if the spec is not in the graph.
func (g *Graph) Dependents(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	return append([]string{}, n.dependents...)
}
