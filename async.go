package dispatch

import "sync"

// Async is the struct returned from async commands.
type Async struct {
	mu       sync.Mutex
	cmd      Command
	data     any
	err      error
	done     *flag
	pending  chan struct{}
	listener func(as *Async)
}

func newAsync(cmd Command) *Async {
	return &Async{
		cmd:     cmd,
		done:    newFlag(),
		pending: make(chan struct{}),
	}
}

//------Fetch Data------//

// Command returns the command this Async belongs to.
func (as *Async) Command() Command {
	return as.cmd
}

// Await waits for the command to be handled and returns its error.
func (as *Async) Await() error {
	<-as.pending
	return as.err
}

// Get waits for the command to be handled and returns the data produced by its handler.
func (as *Async) Get() (any, error) {
	if err := as.Await(); err != nil {
		return nil, err
	}
	return as.data, nil
}

// Done reports whether the command was already handled.
func (as *Async) Done() bool {
	return as.done.enabled()
}

//------Internal------//

func (as *Async) outcome(index int) Outcome {
	<-as.pending
	return Outcome{Index: index, Data: as.data, Err: as.err}
}

func (as *Async) complete(data any, err error) {
	as.mu.Lock()
	if !as.done.enable() {
		as.mu.Unlock()
		return
	}
	as.data = data
	as.err = err
	close(as.pending)
	listener := as.listener
	as.mu.Unlock()
	if listener != nil {
		listener(as)
	}
}

// setListener registers the function called once the command is handled.
// It is called right away when that already happened.
func (as *Async) setListener(listener func(as *Async)) {
	as.mu.Lock()
	if as.done.enabled() {
		as.mu.Unlock()
		listener(as)
		return
	}
	as.listener = listener
	as.mu.Unlock()
}
