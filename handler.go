package dispatch

// Handler must be implemented for a type to qualify as a command handler.
// A handler may assume that the command it receives carries the identifier it was registered for.
type Handler interface {
	Handle(cmd Command) (data any, err error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(cmd Command) (data any, err error)

// Handle calls fn(cmd).
func (fn HandlerFunc) Handle(cmd Command) (data any, err error) {
	return fn(cmd)
}
