package dispatch

import "errors"

// AsyncList groups async commands so their outcomes can be awaited together.
type AsyncList struct {
	cmds []*Async
}

func NewAsyncList(asyncList ...*Async) *AsyncList {
	return &AsyncList{
		cmds: asyncList,
	}
}

// Push appends the provided async commands to the async list
func (asl *AsyncList) Push(asyncList ...*Async) {
	asl.cmds = append(asl.cmds, asyncList...)
}

// Len returns the number of async commands in the list.
func (asl *AsyncList) Len() int {
	return len(asl.cmds)
}

// Await waits for the async commands to be processed and returns their data in list order.
// The errors of all failed commands are joined.
func (asl *AsyncList) Await() ([]any, error) {
	outcomes, err := asl.Outcomes()
	if err != nil {
		return nil, err
	}

	data := make([]any, len(outcomes))
	errs := make([]error, len(outcomes))
	for i, out := range outcomes {
		data[i], errs[i] = out.Get()
	}
	return data, errors.Join(errs...)
}

// Outcomes waits for the async commands to be processed and returns one Outcome per command in list order.
func (asl *AsyncList) Outcomes() ([]Outcome, error) {
	if len(asl.cmds) == 0 {
		return nil, EmptyAwaitListError
	}
	outcomes := make([]Outcome, len(asl.cmds))
	for i, as := range asl.cmds {
		outcomes[i] = as.outcome(i)
	}
	return outcomes, nil
}

// AwaitIterator generates an iterator to iterate over the outcomes in order of arrival.
// Outcome.Index holds the position of the command in the list.
func (asl *AsyncList) AwaitIterator() (<-chan Outcome, error) {
	if len(asl.cmds) == 0 {
		return nil, EmptyAwaitListError
	}
	results := make(chan Outcome, len(asl.cmds))
	processed := newCounter()
	total := uint32(len(asl.cmds))
	for i := 0; i < len(asl.cmds); i++ {
		asl.cmds[i].setListener(asl.generateListener(i, results, processed, total))
	}
	return results, nil
}

func (asl *AsyncList) generateListener(i int, results chan<- Outcome, processed *counter, total uint32) func(as *Async) {
	return func(as *Async) {
		results <- as.outcome(i)
		if processed.increment() == total {
			close(results)
		}
	}
}
