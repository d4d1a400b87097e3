package dispatch

// Outcome is the result of one command of a batch.
// Index is the position of the command in the batch.
type Outcome struct {
	Index int
	Data  any
	Err   error
}

// Get returns the data and the error of the command.
func (out Outcome) Get() (any, error) {
	return out.Data, out.Err
}
