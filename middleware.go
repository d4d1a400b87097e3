package dispatch

// InwardMiddleware must be implemented for a type to qualify as an inward command middleware.
// An inward middleware processes a command before it is dispatched to the respective handler.
// Returning an error prevents the dispatch.
type InwardMiddleware interface {
	HandleInward(cmd Command) error
}

// OutwardMiddleware must be implemented for a type to qualify as an outward command middleware.
// An outward middleware processes the outcome of a command after its handler returned.
type OutwardMiddleware interface {
	HandleOutward(cmd Command, data any, err error) (any, error)
}
