package topic

import (
	"fmt"
	"strings"
)

// Spec is one configured topic: a named group of field paths whose combined
// change triggers one event. Emit is the wire-level event label; it may differ
// from Name (NewRegistry defaults it to Name when empty).
type Spec struct {
	Name   string
	Emit   string
	Fields []string
}

// Registry is the static, ordered set of topic Specs loaded at startup.
// It is never mutated after NewRegistry returns, so concurrent readers need
// no locking.
type Registry struct {
	specs  []Spec
	byName map[string]int
}

// NewRegistry validates the given specs and builds a Registry preserving
// declaration order. It rejects empty or duplicate topic names, topics with
// no fields, and malformed field paths (empty dot-delimited segments).
func NewRegistry(specs []Spec) (*Registry, error) {
	r := &Registry{
		specs:  make([]Spec, 0, len(specs)),
		byName: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("topic: name must not be empty")
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("topic %q: duplicate name", s.Name)
		}
		if len(s.Fields) == 0 {
			return nil, fmt.Errorf("topic %q: at least one field is required", s.Name)
		}
		for _, f := range s.Fields {
			if err := validatePath(f); err != nil {
				return nil, fmt.Errorf("topic %q: %w", s.Name, err)
			}
		}
		if s.Emit == "" {
			s.Emit = s.Name
		}
		r.byName[s.Name] = len(r.specs)
		r.specs = append(r.specs, s)
	}
	return r, nil
}

// Get returns the Spec for the given topic name.
func (r *Registry) Get(name string) (Spec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// Specs returns all topics in declaration order. Callers must not modify the
// returned slice.
func (r *Registry) Specs() []Spec {
	return r.specs
}

// Names returns all topic names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.Name
	}
	return out
}

// Len returns the number of registered topics.
func (r *Registry) Len() int {
	return len(r.specs)
}

// validatePath checks that a field path is non-empty with non-empty
// dot-delimited segments.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("field path must not be empty")
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return fmt.Errorf("field path %q has an empty segment", path)
		}
	}
	return nil
}
