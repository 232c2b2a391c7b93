package document

import (
	"reflect"
	"strings"
)

// Document is one decoded JSON snapshot. Nested objects decode to
// map[string]any, so any level of the tree can be walked with Resolve.
type Document map[string]any

// Resolve returns the value at the dot-separated path, walking nested maps.
// The boolean is false when any segment of the path is absent or when an
// intermediate value is not an object.
func (d Document) Resolve(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at the dot-separated path, creating intermediate objects as
// needed. An intermediate that exists but is not an object is replaced.
func (d Document) Set(path string, v any) {
	segs := strings.Split(path, ".")
	cur := map[string]any(d)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// Equal reports whether two resolved values are equal by value. JSON-decoded
// trees compare correctly: numbers are float64, objects are maps, arrays are
// slices.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
