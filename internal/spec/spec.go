// Package spec defines the unit of work handled by the scheduler: a named
// spec file with an optional list of dependencies on other specs.
package spec

// Spec is a single declared unit of work. Name is unique within a batch.
type Spec struct {
	Name    string
	Path    string
	Content string

	// DependsOn holds the names of specs that must complete before this one
	// starts. Populated either from a structured manifest declaration or,
	// when no structured declaration exists, extracted from Content.
	DependsOn []string

	// Gap marks a spec authored by the auditor rather than the user.
	Gap bool
}

// Names returns the names of the given specs, in input order.
func Names(specs []*Spec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}

// ByName indexes the given specs by their name. Later duplicates overwrite
// earlier ones.
func ByName(specs []*Spec) map[string]*Spec {
	index := make(map[string]*Spec, len(specs))
	for _, s := range specs {
		index[s.Name] = s
	}
	return index
}
