package graph

import (
	"fmt"
	"strings"
)

// MissingDep is one unresolved dependency reference: Spec declared a
// dependency on Missing, but no spec with that name exists in the batch.
type MissingDep struct {
	Spec    string
	Missing string
}

// UnresolvedError reports every dangling dependency reference in a batch,
// not just the first one found.
type UnresolvedError struct {
	Missing []MissingDep
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("spec %q depends on unknown spec %q", m.Spec, m.Missing))
	}
	return "unresolved dependencies: " + strings.Join(parts, "; ")
}

// CycleError reports a circular dependency. Cycle holds the ordered node
// chain; the last element depends on the first. A self-dependency is a
// cycle of length 1.
type CycleError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	chain := append(append([]string{}, e.Cycle...), e.Cycle[0])
	return "circular dependency: " + strings.Join(chain, " -> ")
}
