package dispatch

// Identifier names a command variant. Handlers are registered against it.
type Identifier string

// Command is the interface that must be implemented by any type to be considered a command.
type Command interface {
	Identifier() Identifier
}
