package dispatch

// ErrorHandler must be implemented for a type to qualify as an error handler.
// Error handlers receive every error produced while the bus processes a command.
type ErrorHandler interface {
	Handle(cmd Command, err error)
}
