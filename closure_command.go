package dispatch

// ClosureIdentifier is the identifier of every Closure command.
const ClosureIdentifier Identifier = "closure"

// Closure is a command carrying its own work.
// It is handled by ClosureHandler once that is registered under ClosureIdentifier.
type Closure func() (data any, err error)

// Identifier returns ClosureIdentifier.
func (Closure) Identifier() Identifier {
	return ClosureIdentifier
}

// ClosureHandler runs Closure commands.
type ClosureHandler struct{}

// Handle runs the closure and returns its outcome.
func (hdl *ClosureHandler) Handle(cmd Command) (data any, err error) {
	if fn, ok := cmd.(Closure); ok && fn != nil {
		return fn()
	}
	return nil, InvalidClosureCommandError
}
