package dispatch

import (
	"errors"
	"reflect"
	"testing"
)

func conflictsOf(t *testing.T, err error) []Identifier {
	t.Helper()
	if err == nil {
		return nil
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected a ConflictError, got %v.", err)
	}
	return conflict.Identifiers
}

func TestMerge(t *testing.T) {
	hc := &testHandler{name: "hc"}
	hs := &testHandler{name: "hs"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: hc})
	b := mustRegistry(map[Identifier]Handler{TestSubscribe: hs})

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if merged == a || merged == b {
		t.Error("Merge must build a new registry.")
	}
	if data, _ := merged.Dispatch(testCancel{}); data != "hc" {
		t.Error("The merged registry must route cancel to hc.")
	}
	if data, _ := merged.Dispatch(testSubscribe{}); data != "hs" {
		t.Error("The merged registry must route subscribe to hs.")
	}
	if a.Len() != 1 || b.Len() != 1 || a.Frozen() || b.Frozen() {
		t.Error("The merged registries must be left untouched.")
	}
}

func TestMerge_Conflict(t *testing.T) {
	hc := &testHandler{name: "hc"}
	hc2 := &testHandler{name: "hc2"}
	hs := &testHandler{name: "hs"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: hc})
	b := mustRegistry(map[Identifier]Handler{TestCancel: hc2, TestSubscribe: hs})

	merged, err := Merge(a, b)
	if !errors.Is(err, HandlerConflictError) {
		t.Fatalf("Expected HandlerConflictError, got %v.", err)
	}
	if ids := conflictsOf(t, err); !reflect.DeepEqual(ids, []Identifier{TestCancel}) {
		t.Errorf("Expected the conflict to name cancel, got %v.", ids)
	}
	if err.Error() != `dispatch: conflicting handlers for "cancel"` {
		t.Errorf("Unexpected ConflictError message: %s.", err)
	}

	// the registry of a failed merge refuses to work
	if !errors.Is(merged.Err(), HandlerConflictError) {
		t.Error("The failed registry must remember its conflicts.")
	}
	if _, err := merged.Dispatch(testSubscribe{}); !errors.Is(err, HandlerConflictError) {
		t.Errorf("A conflicting registry must refuse dispatches, got %v.", err)
	}
	if err := merged.Register(TestCommand1, &testHandler{}); !errors.Is(err, HandlerConflictError) {
		t.Errorf("A conflicting registry must refuse registrations, got %v.", err)
	}
	if err := NewBus().Initialize(merged); !errors.Is(err, HandlerConflictError) {
		t.Errorf("A conflicting registry must not initialize a bus, got %v.", err)
	}
}

func TestMerge_SameHandler(t *testing.T) {
	hc := &testHandler{name: "hc"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: hc})
	b := mustRegistry(map[Identifier]Handler{TestCancel: hc})

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Binding the same handler twice is not a conflict: %v", err)
	}
	if bound, _ := merged.Handler(TestCancel); bound != hc {
		t.Error("Unexpected handler bound to cancel.")
	}
}

func TestMerge_UncomparableHandlers(t *testing.T) {
	fn := HandlerFunc(func(cmd Command) (any, error) { return "fn", nil })
	a := mustRegistry(map[Identifier]Handler{TestCancel: fn})
	b := mustRegistry(map[Identifier]Handler{TestCommand1: &testHandler{}})

	self, err := Merge(a, a)
	if err != nil {
		t.Fatalf("Reusing a registry is not a conflict: %v", err)
	}
	if data, _ := self.Dispatch(testCancel{}); data != "fn" {
		t.Error("Unexpected handler bound to cancel.")
	}

	ab, _ := Merge(a, b)
	aEmpty, _ := Merge(a, NewRegistry())
	if _, err := Merge(ab, aEmpty); err != nil {
		t.Errorf("Registries sharing an origin must merge, got %v.", err)
	}

	// the same function registered twice makes two distinct bindings
	c := mustRegistry(map[Identifier]Handler{TestCancel: fn})
	if _, err := Merge(a, c); !errors.Is(err, HandlerConflictError) {
		t.Errorf("Separately registered functions cannot be compared, got %v.", err)
	}
}

func TestMerge_Identity(t *testing.T) {
	hc := &testHandler{name: "hc"}
	hs := &testHandler{name: "hs"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: hc, TestSubscribe: hs})

	for _, regs := range [][]*Registry{{a, NewRegistry()}, {NewRegistry(), a}, {a, nil}} {
		merged, err := Merge(regs...)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !reflect.DeepEqual(merged.Identifiers(), a.Identifiers()) {
			t.Errorf("Unexpected identifiers: %v.", merged.Identifiers())
		}
		for _, id := range a.Identifiers() {
			want, _ := a.Handler(id)
			if got, _ := merged.Handler(id); got != want {
				t.Errorf("Unexpected handler for %s.", id)
			}
		}
	}

	empty, err := Merge()
	if err != nil || empty.Len() != 0 {
		t.Error("Merging nothing must produce an empty registry.")
	}
}

func TestMerge_Associativity(t *testing.T) {
	h1 := &testHandler{name: "h1"}
	h2 := &testHandler{name: "h2"}
	h3 := &testHandler{name: "h3"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: h1, TestCommand1: h1})
	b := mustRegistry(map[Identifier]Handler{TestSubscribe: h2, TestCommand1: h1})
	c := mustRegistry(map[Identifier]Handler{TestCancel: h3, TestSubscribe: h3, TestCommand2: h3})

	_, err := Merge(a, b, c)
	flat := conflictsOf(t, err)
	expected := []Identifier{TestCancel, TestSubscribe}
	if !reflect.DeepEqual(flat, expected) {
		t.Fatalf("Unexpected conflicts: %v.", flat)
	}

	ab, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = Merge(ab, c)
	if left := conflictsOf(t, err); !reflect.DeepEqual(left, flat) {
		t.Errorf("Left grouping reported %v, expected %v.", left, flat)
	}

	// b and c conflict on subscribe already, a adds cancel
	bc, err := Merge(b, c)
	if inner := conflictsOf(t, err); !reflect.DeepEqual(inner, []Identifier{TestSubscribe}) {
		t.Fatalf("Unexpected inner conflicts: %v.", inner)
	}
	_, err = Merge(a, bc)
	if right := conflictsOf(t, err); !reflect.DeepEqual(right, flat) {
		t.Errorf("Right grouping reported %v, expected %v.", right, flat)
	}
}

func TestMerge_NestedFailure(t *testing.T) {
	h1 := &testHandler{name: "h1"}
	h2 := &testHandler{name: "h2"}
	h3 := &testHandler{name: "h3"}
	h4 := &testHandler{name: "h4"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: h1, TestSubscribe: h3})
	b := mustRegistry(map[Identifier]Handler{TestCancel: h2})
	c := mustRegistry(map[Identifier]Handler{TestSubscribe: h4})
	expected := []Identifier{TestCancel, TestSubscribe}

	_, err := Merge(a, b, c)
	if flat := conflictsOf(t, err); !reflect.DeepEqual(flat, expected) {
		t.Fatalf("Unexpected conflicts: %v.", flat)
	}

	ab, err := Merge(a, b)
	if inner := conflictsOf(t, err); !reflect.DeepEqual(inner, []Identifier{TestCancel}) {
		t.Fatalf("Unexpected inner conflicts: %v.", inner)
	}
	_, err = Merge(ab, c)
	if left := conflictsOf(t, err); !reflect.DeepEqual(left, expected) {
		t.Errorf("Left grouping reported %v, expected %v.", left, expected)
	}

	bc, err := Merge(b, c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = Merge(a, bc)
	if right := conflictsOf(t, err); !reflect.DeepEqual(right, expected) {
		t.Errorf("Right grouping reported %v, expected %v.", right, expected)
	}

	ca, _ := Merge(c, a)
	_, err = Merge(b, ca)
	if swapped := conflictsOf(t, err); !reflect.DeepEqual(swapped, expected) {
		t.Errorf("Reordered grouping reported %v, expected %v.", swapped, expected)
	}
}

func TestMergeOverwrite(t *testing.T) {
	hc := &testHandler{name: "hc"}
	hc2 := &testHandler{name: "hc2"}
	hs := &testHandler{name: "hs"}
	a := mustRegistry(map[Identifier]Handler{TestCancel: hc})
	b := mustRegistry(map[Identifier]Handler{TestCancel: hc2, TestSubscribe: hs})

	merged := MergeOverwrite(a, b)
	if bound, _ := merged.Handler(TestCancel); bound != hc2 {
		t.Error("The last registry must win.")
	}
	if merged.Len() != 2 {
		t.Error("Unexpected number of handlers.")
	}
	if bound, _ := MergeOverwrite(b, a).Handler(TestCancel); bound != hc {
		t.Error("The last registry must win regardless of order.")
	}
}
