package dispatch

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/io-da/schedule"
)

// Bus executes commands over a frozen Registry, synchronously or through a worker pool.
// The Bus should be instantiated using the NewBus function and initialized with the registries it dispatches to.
type Bus struct {
	workerPoolSize     int
	queueBuffer        int
	initialized        *flag
	shuttingDown       *flag
	workers            *counter
	registry           *Registry
	errorHandlers      []ErrorHandler
	inwardMiddlewares  []InwardMiddleware
	outwardMiddlewares []OutwardMiddleware
	asyncCommandsQueue chan *Async
	closed             chan bool
	stopped            chan struct{}
	scheduleProcessor  *scheduleProcessor
}

// NewBus instantiates the Bus struct.
// The Initialization of the Bus is performed separately (Initialize function) for dependency injection purposes.
func NewBus() *Bus {
	return &Bus{
		workerPoolSize:     runtime.GOMAXPROCS(0),
		queueBuffer:        100,
		initialized:        newFlag(),
		shuttingDown:       newFlag(),
		workers:            newCounter(),
		errorHandlers:      make([]ErrorHandler, 0),
		inwardMiddlewares:  make([]InwardMiddleware, 0),
		outwardMiddlewares: make([]OutwardMiddleware, 0),
		closed:             make(chan bool),
	}
}

// WorkerPoolSize may optionally be provided to tweak the worker pool size for async commands.
// It can only be adjusted *before* the bus is initialized.
// It defaults to the value returned by runtime.GOMAXPROCS(0).
func (bus *Bus) WorkerPoolSize(workerPoolSize int) {
	if !bus.initialized.enabled() && workerPoolSize > 0 {
		bus.workerPoolSize = workerPoolSize
	}
}

// QueueBuffer may optionally be provided to tweak the buffer size of the async commands queue.
// This value may have high impact on performance depending on the use case.
// It can only be adjusted *before* the bus is initialized.
// It defaults to 100.
func (bus *Bus) QueueBuffer(queueBuffer int) {
	if !bus.initialized.enabled() && queueBuffer >= 0 {
		bus.queueBuffer = queueBuffer
	}
}

// ErrorHandlers may optionally be provided.
// They will receive any error thrown during the command process.
func (bus *Bus) ErrorHandlers(hdls ...ErrorHandler) {
	if !bus.initialized.enabled() {
		bus.errorHandlers = hdls
	}
}

// InwardMiddlewares may optionally be provided.
// They run in the given order before every dispatch.
func (bus *Bus) InwardMiddlewares(mdls ...InwardMiddleware) {
	if !bus.initialized.enabled() {
		bus.inwardMiddlewares = mdls
	}
}

// OutwardMiddlewares may optionally be provided.
// They run in the given order after every dispatch.
func (bus *Bus) OutwardMiddlewares(mdls ...OutwardMiddleware) {
	if !bus.initialized.enabled() {
		bus.outwardMiddlewares = mdls
	}
}

// Initialize the bus with the registries it dispatches to.
// Several registries are merged first and a conflict between them leaves the bus uninitialized.
// The resulting registry is frozen.
func (bus *Bus) Initialize(regs ...*Registry) error {
	reg, err := bus.combine(regs)
	if err != nil {
		return err
	}
	if bus.initialized.enable() {
		reg.Freeze()
		bus.registry = reg
		bus.asyncCommandsQueue = make(chan *Async, bus.queueBuffer)
		bus.stopped = make(chan struct{})
		bus.scheduleProcessor = newScheduleProcessor(bus)
		for i := 0; i < bus.workerPoolSize; i++ {
			bus.workers.increment()
			go bus.worker(bus.asyncCommandsQueue, bus.closed)
		}
	}
	return nil
}

// Registry returns the registry the bus dispatches to, nil before initialization.
func (bus *Bus) Registry() *Registry {
	return bus.registry
}

// HandleAsync queues the command for the workers.
func (bus *Bus) HandleAsync(cmd Command) (*Async, error) {
	if err := bus.isValid(cmd); err != nil {
		return nil, err
	}
	as := newAsync(cmd)
	bus.asyncCommandsQueue <- as
	return as, nil
}

// Handle the command synchronously.
func (bus *Bus) Handle(cmd Command) (any, error) {
	if err := bus.isValid(cmd); err != nil {
		return nil, err
	}
	return bus.handle(cmd)
}

// HandleAll fans the commands out to the workers and returns their outcomes in input order.
// A command that cannot be queued gets an Outcome carrying the reason.
func (bus *Bus) HandleAll(cmds ...Command) []Outcome {
	if len(cmds) == 0 {
		return []Outcome{}
	}
	asl := NewAsyncList()
	for _, cmd := range cmds {
		as, err := bus.HandleAsync(cmd)
		if err != nil {
			as = newAsync(cmd)
			as.complete(nil, err)
		}
		asl.Push(as)
	}
	outcomes, _ := asl.Outcomes()
	return outcomes
}

// Schedule the command to be handled asynchronously whenever the schedule fires.
// The returned key may be used to unschedule it.
func (bus *Bus) Schedule(cmd Command, sch *schedule.Schedule) (*uuid.UUID, error) {
	if err := bus.isValid(cmd); err != nil {
		return nil, err
	}
	if sch == nil {
		bus.error(cmd, InvalidScheduleError)
		return nil, InvalidScheduleError
	}
	key := bus.scheduleProcessor.add(newScheduledCommand(cmd, sch))
	return &key, nil
}

// Unschedule removes scheduled commands.
func (bus *Bus) Unschedule(keys ...uuid.UUID) {
	if bus.initialized.enabled() {
		bus.scheduleProcessor.remove(keys...)
	}
}

// Scheduled returns the async command produced by the latest firing of a schedule.
// It is nil until the schedule fires. Finished schedules keep it until they are unscheduled.
func (bus *Bus) Scheduled(key uuid.UUID) (*Async, bool) {
	if !bus.initialized.enabled() {
		return nil, false
	}
	return bus.scheduleProcessor.latest(key)
}

// Shutdown the bus gracefully and without waiting.
// Queued async commands are still handled, commands provided while shutting down are refused.
func (bus *Bus) Shutdown() {
	if bus.initialized.enabled() && bus.shuttingDown.enable() {
		go bus.shutdown(bus.stopped)
	}
}

// ShutdownWait shuts the bus down and waits until the workers and the schedule processor stopped,
// or until the context is done.
func (bus *Bus) ShutdownWait(ctx context.Context) error {
	if !bus.initialized.enabled() {
		return nil
	}
	stopped := bus.stopped
	bus.Shutdown()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//-----Private Functions------//

func (bus *Bus) combine(regs []*Registry) (*Registry, error) {
	if len(regs) == 1 && regs[0] != nil {
		return regs[0], regs[0].Err()
	}
	return Merge(regs...)
}

func (bus *Bus) worker(asyncCommandsQueue <-chan *Async, closed chan<- bool) {
	for as := range asyncCommandsQueue {
		if as == nil {
			break
		}
		as.complete(bus.handle(as.cmd))
	}
	closed <- true
}

func (bus *Bus) handle(cmd Command) (data any, err error) {
	for _, mdl := range bus.inwardMiddlewares {
		if err = mdl.HandleInward(cmd); err != nil {
			bus.error(cmd, err)
			return nil, err
		}
	}
	data, err = bus.registry.Dispatch(cmd)
	for _, mdl := range bus.outwardMiddlewares {
		data, err = mdl.HandleOutward(cmd, data, err)
	}
	if err != nil {
		bus.error(cmd, err)
	}
	return data, err
}

func (bus *Bus) shutdown(stopped chan<- struct{}) {
	for bus.workers.Load() > 0 {
		bus.asyncCommandsQueue <- nil
		<-bus.closed
		bus.workers.decrement()
	}
	exited := bus.scheduleProcessor.shutdown()
	// the processor may be blocked on a full queue
	for waiting := true; waiting; {
		select {
		case as := <-bus.asyncCommandsQueue:
			bus.refuse(as)
		case <-exited:
			waiting = false
		}
	}
	bus.drain()
	bus.initialized.disable()
	bus.shuttingDown.disable()
	close(stopped)
}

// drain fails whatever was queued after the workers stopped.
func (bus *Bus) drain() {
	for {
		select {
		case as := <-bus.asyncCommandsQueue:
			bus.refuse(as)
		default:
			return
		}
	}
}

func (bus *Bus) refuse(as *Async) {
	if as != nil {
		bus.error(as.cmd, BusIsShuttingDownError)
		as.complete(nil, BusIsShuttingDownError)
	}
}

func (bus *Bus) isShuttingDown() bool {
	return bus.shuttingDown.enabled()
}

func (bus *Bus) isValid(cmd Command) error {
	var err error
	if cmd == nil {
		err = InvalidCommandError
		bus.error(cmd, err)
		return err
	}
	if !bus.initialized.enabled() {
		err = BusNotInitializedError
		bus.error(cmd, err)
		return err
	}
	if bus.isShuttingDown() {
		err = BusIsShuttingDownError
		bus.error(cmd, err)
		return err
	}
	return nil
}

func (bus *Bus) error(cmd Command, err error) {
	for _, errHdl := range bus.errorHandlers {
		errHdl.Handle(cmd, err)
	}
}
