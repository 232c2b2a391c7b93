package topic

import "github.com/statecast/statecast/internal/document"

// Project extracts the spec's fields from doc into a minimal payload that
// preserves the source nesting. Fields absent from doc are omitted from the
// payload rather than written as nulls; nothing outside the spec's field
// paths is copied.
func (s Spec) Project(doc document.Document) document.Document {
	out := document.Document{}
	for _, f := range s.Fields {
		if v, ok := doc.Resolve(f); ok {
			out.Set(f, v)
		}
	}
	return out
}
