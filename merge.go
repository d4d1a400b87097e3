package dispatch

import (
	"reflect"
	"slices"
)

// Merge combines the registries into a new one, inserting their bindings in the listed order.
// An identifier bound to different handlers by two registries is a conflict.
//
// Every conflicting identifier is reported by a single *ConflictError.
// The registry returned alongside it remembers those identifiers: it refuses registrations and dispatches,
// and merging it again carries its conflicts over, so nested merges report what a single merge would.
// The input registries are left untouched and nil registries are skipped.
func Merge(regs ...*Registry) (*Registry, error) {
	merged := NewRegistry()
	conflicts := make([]Identifier, 0)
	addConflict := func(id Identifier) {
		if !slices.Contains(conflicts, id) {
			conflicts = append(conflicts, id)
		}
	}
	for _, reg := range regs {
		if reg == nil {
			continue
		}
		bindings, recorded := reg.snapshot()
		for _, id := range recorded {
			addConflict(id)
		}
		for id, b := range bindings {
			current, exists := merged.bindings[id]
			if !exists {
				merged.bindings[id] = b
				continue
			}
			if !sameBinding(current, b) {
				addConflict(id)
			}
		}
	}
	if len(conflicts) > 0 {
		slices.Sort(conflicts)
		merged.conflicts = conflicts
		return merged, merged.conflictError()
	}
	return merged, nil
}

// MergeOverwrite combines the registries into a new one where later bindings replace earlier ones.
// Use it only where silently overriding a handler is the intended behavior.
// Conflicts recorded by a failed Merge are dropped.
func MergeOverwrite(regs ...*Registry) *Registry {
	merged := NewRegistry()
	for _, reg := range regs {
		if reg == nil {
			continue
		}
		bindings, _ := reg.snapshot()
		for id, b := range bindings {
			merged.bindings[id] = b
		}
	}
	return merged
}

// sameBinding reports whether both bindings hold the same handler.
// A shared binding is always the same, otherwise the handlers must be equal comparable values.
func sameBinding(a, b *binding) bool {
	if a == b {
		return true
	}
	va, vb := reflect.ValueOf(a.hdl), reflect.ValueOf(b.hdl)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a.hdl == b.hdl
}
