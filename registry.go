package dispatch

import (
	"slices"
	"sync"
)

// binding ties a handler to the registry it was registered with.
// Merged registries share bindings, which keeps a handler identical to itself even when it cannot be compared.
type binding struct {
	hdl Handler
}

// Registry maps each command identifier to exactly one handler.
// Registries are built first and frozen afterwards: the first dispatch (or Freeze) ends the registration phase.
// A frozen registry is read without locking and may be shared by any number of goroutines.
// The zero value is an empty registry ready to use.
type Registry struct {
	mu        sync.Mutex
	bindings  map[Identifier]*binding
	conflicts []Identifier
	frozen    flag
}

// NewRegistry instantiates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Identifier]*binding),
	}
}

// Register binds the handler to the identifier.
// An identifier that is already bound is never overwritten, a *ConflictError is returned instead.
func (reg *Registry) Register(id Identifier, hdl Handler) error {
	if hdl == nil {
		return InvalidHandlerError
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if err := reg.conflictError(); err != nil {
		return err
	}
	if reg.frozen.enabled() {
		return RegistryFrozenError
	}
	if _, exists := reg.bindings[id]; exists {
		return &ConflictError{Identifiers: []Identifier{id}}
	}
	if reg.bindings == nil {
		reg.bindings = make(map[Identifier]*binding)
	}
	reg.bindings[id] = &binding{hdl: hdl}
	return nil
}

// Freeze ends the registration phase.
func (reg *Registry) Freeze() {
	if reg.frozen.enabled() {
		return
	}
	reg.mu.Lock()
	reg.frozen.enable()
	reg.mu.Unlock()
}

// Frozen reports whether the registration phase is over.
func (reg *Registry) Frozen() bool {
	return reg.frozen.enabled()
}

// Err returns the *ConflictError of the failed Merge that built the registry, nil otherwise.
// Such a registry refuses every registration and dispatch.
func (reg *Registry) Err() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.conflictError()
}

// Handler returns the handler bound to the identifier.
func (reg *Registry) Handler(id Identifier) (Handler, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if b, ok := reg.bindings[id]; ok {
		return b.hdl, true
	}
	return nil, false
}

// Identifiers returns the bound identifiers in ascending order.
func (reg *Registry) Identifiers() []Identifier {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	ids := make([]Identifier, 0, len(reg.bindings))
	for id := range reg.bindings {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of bound identifiers.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.bindings)
}

// Dispatch routes the command to its handler and returns the handler's data and error untouched.
// A command whose identifier is not bound fails with an *UnknownCommandError.
func (reg *Registry) Dispatch(cmd Command) (any, error) {
	if cmd == nil {
		return nil, InvalidCommandError
	}
	reg.Freeze()
	// conflicts are only set before freezing
	if len(reg.conflicts) > 0 {
		return nil, reg.conflictError()
	}
	b, ok := reg.bindings[cmd.Identifier()]
	if !ok {
		return nil, &UnknownCommandError{Identifier: cmd.Identifier()}
	}
	return b.hdl.Handle(cmd)
}

// DispatchAll dispatches the commands one by one.
// Every command gets an Outcome, in input order, regardless of the failures of its siblings.
func (reg *Registry) DispatchAll(cmds ...Command) []Outcome {
	outcomes := make([]Outcome, len(cmds))
	for i, cmd := range cmds {
		data, err := reg.Dispatch(cmd)
		outcomes[i] = Outcome{Index: i, Data: data, Err: err}
	}
	return outcomes
}

//-----Private Functions------//

func (reg *Registry) conflictError() error {
	if len(reg.conflicts) == 0 {
		return nil
	}
	return &ConflictError{Identifiers: slices.Clone(reg.conflicts)}
}

// snapshot copies the bindings and the recorded conflicts of the registry.
func (reg *Registry) snapshot() (map[Identifier]*binding, []Identifier) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	bindings := make(map[Identifier]*binding, len(reg.bindings))
	for id, b := range reg.bindings {
		bindings[id] = b
	}
	return bindings, slices.Clone(reg.conflicts)
}
