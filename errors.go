package dispatch

import (
	"fmt"
	"strings"
)

// DispatchError is used to create errors originating from the registry or the bus.
type DispatchError string

// Error returns the string message of the error.
func (e DispatchError) Error() string {
	return string(e)
}

const (
	// InvalidCommandError will be returned when attempting to dispatch a nil command.
	InvalidCommandError = DispatchError("dispatch: invalid command")
	// InvalidHandlerError will be returned when attempting to register a nil handler.
	InvalidHandlerError = DispatchError("dispatch: invalid handler")
	// HandlerConflictError is matched by every ConflictError.
	HandlerConflictError = DispatchError("dispatch: there can only be one handler per command")
	// HandlerNotFoundError is matched by every UnknownCommandError.
	HandlerNotFoundError = DispatchError("dispatch: no handler found for the command provided")
	// RegistryFrozenError will be returned when attempting to register a handler after the registry started dispatching.
	RegistryFrozenError = DispatchError("dispatch: the registry is frozen")
	// BusNotInitializedError will be returned when attempting to handle a command before the bus is initialized.
	BusNotInitializedError = DispatchError("dispatch: the bus is not initialized")
	// BusIsShuttingDownError will be returned when attempting to handle a command while the bus is shutting down.
	BusIsShuttingDownError = DispatchError("dispatch: the bus is shutting down")
	// InvalidScheduleError will be returned when attempting to schedule a command without a schedule.
	InvalidScheduleError = DispatchError("dispatch: invalid schedule")
	// EmptyAwaitListError will be returned when attempting to await an empty AsyncList.
	EmptyAwaitListError = DispatchError("dispatch: await list is empty")
	// InvalidClosureCommandError will be returned when ClosureHandler receives anything but a Closure.
	InvalidClosureCommandError = DispatchError("dispatch: invalid closure command")
)

// ConflictError reports identifiers bound to more than one handler.
// It is returned by Registry.Register, Merge and Bus.Initialize.
type ConflictError struct {
	Identifiers []Identifier
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.Identifiers))
	for i, id := range e.Identifiers {
		ids[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("dispatch: conflicting handlers for %s", strings.Join(ids, ", "))
}

// Is makes errors.Is(err, HandlerConflictError) hold.
func (e *ConflictError) Is(target error) bool {
	return target == HandlerConflictError
}

// UnknownCommandError is returned when a command's identifier has no handler.
type UnknownCommandError struct {
	Identifier Identifier
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("dispatch: no handler found for %q", e.Identifier)
}

// Is makes errors.Is(err, HandlerNotFoundError) hold.
func (e *UnknownCommandError) Is(target error) bool {
	return target == HandlerNotFoundError
}
