package topic

import "github.com/statecast/statecast/internal/document"

// Changed returns the topics for which at least one field resolves differently
// in next than in prev, in registry declaration order. Per topic, checking
// stops at the first differing field; other topics are still evaluated.
//
// Absence participates in the comparison: a field present on one side and
// absent on the other is a change. Values are compared by value, not
// reference.
func (r *Registry) Changed(prev, next document.Document) []Spec {
	var out []Spec
	for _, s := range r.specs {
		if s.changed(prev, next) {
			out = append(out, s)
		}
	}
	return out
}

// changed reports whether any of the spec's fields differ between the two
// snapshots.
func (s Spec) changed(prev, next document.Document) bool {
	for _, f := range s.Fields {
		pv, pok := prev.Resolve(f)
		nv, nok := next.Resolve(f)
		if pok != nok {
			return true
		}
		if pok && !document.Equal(pv, nv) {
			return true
		}
	}
	return false
}
