package topic

import (
	"encoding/json"
	"testing"

	"github.com/statecast/statecast/internal/document"
)

func doc(t *testing.T, s string) document.Document {
	t.Helper()
	var d document.Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		t.Fatalf("unmarshal %q: %v", s, err)
	}
	return d
}

func changedNames(specs []Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func TestChanged_SelfDiffIsEmpty(t *testing.T) {
	r := mustRegistry(t,
		Spec{Name: "names", Fields: []string{"p1name", "p2name"}},
		Spec{Name: "score", Fields: []string{"score.p1", "score.p2"}},
	)
	d := doc(t, `{"p1name":"A","p2name":"B","score":{"p1":1,"p2":2}}`)

	if got := r.Changed(d, d); len(got) != 0 {
		t.Errorf("Changed(A, A): got %v, want none", changedNames(got))
	}
}

func TestChanged_OneFieldDiffers(t *testing.T) {
	r := mustRegistry(t, Spec{Name: "names", Fields: []string{"p1name", "p2name"}})
	prev := doc(t, `{"p1name":"A","p2name":"B"}`)
	next := doc(t, `{"p1name":"A","p2name":"C"}`)

	got := r.Changed(prev, next)
	if len(got) != 1 || got[0].Name != "names" {
		t.Errorf("Changed: got %v, want [names]", changedNames(got))
	}
}

func TestChanged_UnchangedTopicDoesNotFire(t *testing.T) {
	r := mustRegistry(t,
		Spec{Name: "names", Fields: []string{"p1name", "p2name"}},
		Spec{Name: "score", Fields: []string{"score"}},
	)
	prev := doc(t, `{"p1name":"A","p2name":"B","score":7}`)
	next := doc(t, `{"p1name":"A","p2name":"C","score":7}`)

	got := r.Changed(prev, next)
	if len(got) != 1 || got[0].Name != "names" {
		t.Errorf("Changed: got %v, want [names]", changedNames(got))
	}
}

func TestChanged_AbsentVsPresent(t *testing.T) {
	r := mustRegistry(t, Spec{Name: "t", Fields: []string{"a.b"}})

	prev := doc(t, `{}`)
	next := doc(t, `{"a":{"b":1}}`)
	if got := r.Changed(prev, next); len(got) != 1 {
		t.Errorf("absent→present: got %v, want [t]", changedNames(got))
	}
	if got := r.Changed(next, prev); len(got) != 1 {
		t.Errorf("present→absent: got %v, want [t]", changedNames(got))
	}
}

func TestChanged_AbsentOnBothSides(t *testing.T) {
	r := mustRegistry(t, Spec{Name: "t", Fields: []string{"missing.field"}})
	prev := doc(t, `{"x":1}`)
	next := doc(t, `{"x":2}`)

	if got := r.Changed(prev, next); len(got) != 0 {
		t.Errorf("absent on both sides: got %v, want none", changedNames(got))
	}
}

func TestChanged_NullVsAbsent(t *testing.T) {
	r := mustRegistry(t, Spec{Name: "t", Fields: []string{"a"}})
	withNull := doc(t, `{"a":null}`)
	without := doc(t, `{}`)

	// Explicit null is present; absence differs from it.
	if got := r.Changed(withNull, without); len(got) != 1 {
		t.Errorf("null→absent: got %v, want [t]", changedNames(got))
	}
	if got := r.Changed(withNull, withNull); len(got) != 0 {
		t.Errorf("null→null: got %v, want none", changedNames(got))
	}
}

func TestChanged_ValueEqualityNotReference(t *testing.T) {
	r := mustRegistry(t, Spec{Name: "t", Fields: []string{"obj"}})
	// Separate decodes — distinct map instances with equal values.
	a := doc(t, `{"obj":{"k":[1,2]}}`)
	b := doc(t, `{"obj":{"k":[1,2]}}`)

	if got := r.Changed(a, b); len(got) != 0 {
		t.Errorf("equal values, distinct refs: got %v, want none", changedNames(got))
	}
}

func TestChanged_RegistryOrder(t *testing.T) {
	r := mustRegistry(t,
		Spec{Name: "z", Fields: []string{"a"}},
		Spec{Name: "m", Fields: []string{"b"}},
		Spec{Name: "a", Fields: []string{"c"}},
	)
	prev := doc(t, `{"a":1,"b":1,"c":1}`)
	next := doc(t, `{"a":2,"b":2,"c":2}`)

	got := changedNames(r.Changed(prev, next))
	want := []string{"z", "m", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Changed order: got %v, want %v", got, want)
		}
	}
}

func TestChanged_MultipleTopicsOverlappingField(t *testing.T) {
	r := mustRegistry(t,
		Spec{Name: "a", Fields: []string{"shared"}},
		Spec{Name: "b", Fields: []string{"shared", "other"}},
	)
	prev := doc(t, `{"shared":1,"other":1}`)
	next := doc(t, `{"shared":2,"other":1}`)

	got := changedNames(r.Changed(prev, next))
	if len(got) != 2 {
		t.Fatalf("Changed: got %v, want both topics", got)
	}
}

func TestProject_ExactPathsOnly(t *testing.T) {
	s := Spec{Name: "t", Fields: []string{"p1name", "score.p1"}}
	d := doc(t, `{"p1name":"A","p2name":"B","score":{"p1":1,"p2":2},"extra":true}`)

	got := s.Project(d)

	if v, _ := got.Resolve("p1name"); v != "A" {
		t.Errorf("p1name: got %v, want A", v)
	}
	if v, _ := got.Resolve("score.p1"); v != float64(1) {
		t.Errorf("score.p1: got %v, want 1", v)
	}
	// Untracked fields never leak.
	if _, ok := got.Resolve("p2name"); ok {
		t.Error("p2name leaked into projection")
	}
	if _, ok := got.Resolve("score.p2"); ok {
		t.Error("score.p2 leaked into projection")
	}
	if _, ok := got.Resolve("extra"); ok {
		t.Error("extra leaked into projection")
	}
}

func TestProject_PreservesNesting(t *testing.T) {
	s := Spec{Name: "t", Fields: []string{"a.b"}}
	got := s.Project(doc(t, `{"a":{"b":5,"c":6}}`))

	inner, ok := got["a"].(map[string]any)
	if !ok {
		t.Fatalf("projection: got %v, want nested object under a", got)
	}
	if inner["b"] != float64(5) {
		t.Errorf("a.b: got %v, want 5", inner["b"])
	}
	if _, ok := inner["c"]; ok {
		t.Error("a.c leaked into projection")
	}
}

func TestProject_AbsentFieldOmitted(t *testing.T) {
	s := Spec{Name: "t", Fields: []string{"present", "missing"}}
	got := s.Project(doc(t, `{"present":1}`))

	if _, ok := got.Resolve("missing"); ok {
		t.Error("missing field should be omitted")
	}
	if len(got) != 1 {
		t.Errorf("projection size: got %d keys, want 1", len(got))
	}
}

func TestProject_Idempotent(t *testing.T) {
	s := Spec{Name: "t", Fields: []string{"a.b", "c"}}
	d := doc(t, `{"a":{"b":1},"c":2,"d":3}`)

	once := s.Project(d)
	twice := s.Project(once)

	if !document.Equal(map[string]any(once), map[string]any(twice)) {
		t.Errorf("Project not idempotent: %v vs %v", once, twice)
	}
}
