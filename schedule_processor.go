package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// scheduleProcessor hands scheduled commands to the bus workers whenever their schedule fires.
type scheduleProcessor struct {
	sync.Mutex
	bus               *Bus
	scheduledCommands map[uuid.UUID]*scheduledCommand
	triggerSignal     chan bool
	shuttingDown      *flag
	exited            chan struct{}
	sleepTimer        *time.Timer
	sleepUntil        time.Time
}

func newScheduleProcessor(bus *Bus) *scheduleProcessor {
	pro := &scheduleProcessor{
		bus:               bus,
		scheduledCommands: make(map[uuid.UUID]*scheduledCommand),
		triggerSignal:     make(chan bool, 1),
		shuttingDown:      newFlag(),
		exited:            make(chan struct{}),
	}
	go pro.process()
	return pro
}

func (pro *scheduleProcessor) add(schCmd *scheduledCommand) uuid.UUID {
	pro.Lock()
	key := uuid.New()
	pro.scheduledCommands[key] = schCmd
	pro.Unlock()
	pro.trigger()
	return key
}

func (pro *scheduleProcessor) remove(keys ...uuid.UUID) {
	pro.Lock()
	for _, key := range keys {
		delete(pro.scheduledCommands, key)
	}
	pro.Unlock()
	pro.trigger()
}

// latest returns the async command of the last firing under the key.
func (pro *scheduleProcessor) latest(key uuid.UUID) (*Async, bool) {
	pro.Lock()
	defer pro.Unlock()
	schCmd, ok := pro.scheduledCommands[key]
	if !ok {
		return nil, false
	}
	return schCmd.last, true
}

// len counts the schedules that will still fire.
func (pro *scheduleProcessor) len() int {
	pro.Lock()
	defer pro.Unlock()
	active := 0
	for _, schCmd := range pro.scheduledCommands {
		if !schCmd.finished {
			active++
		}
	}
	return active
}

// shutdown stops the processor, the returned channel is closed once it exited.
func (pro *scheduleProcessor) shutdown() <-chan struct{} {
	pro.shuttingDown.enable()
	pro.trigger()
	return pro.exited
}

func (pro *scheduleProcessor) process() {
	defer close(pro.exited)
	for !pro.shuttingDown.enabled() {
		pro.Lock()
		now := time.Now()
		pro.sleepUntil = time.Time{}
		for _, schCmd := range pro.scheduledCommands {
			if schCmd.finished {
				continue
			}
			if following, ok := pro.fire(schCmd, now); ok {
				pro.updateSleepUntil(following)
				continue
			}
			schCmd.finished = true
		}
		pro.updateSleepTimer(pro.determineSleepDuration())
		pro.Unlock()

		// allow the processor to be triggered either with timer or directly
		select {
		case <-pro.sleepTimer.C:
		case <-pro.triggerSignal:
		}
	}
	pro.sleepTimer.Stop()
}

// fire hands the command to the bus when its time has come and returns the next firing time.
// A refused command is reported to the error handlers by the bus itself.
func (pro *scheduleProcessor) fire(schCmd *scheduledCommand, now time.Time) (time.Time, bool) {
	following, ok := schCmd.following()
	if !ok || now.Before(following) {
		return following, ok
	}
	if as, err := pro.bus.HandleAsync(schCmd.cmd); err == nil {
		schCmd.last = as
	}
	if err := schCmd.sch.Next(); err != nil {
		return time.Time{}, false
	}
	return schCmd.sch.Following(), true
}

// trigger wakes the processor up, a pending signal is enough.
func (pro *scheduleProcessor) trigger() {
	select {
	case pro.triggerSignal <- true:
	default:
	}
}

func (pro *scheduleProcessor) updateSleepUntil(nextTrigger time.Time) {
	if pro.sleepUntil.IsZero() || nextTrigger.Before(pro.sleepUntil) {
		pro.sleepUntil = nextTrigger
	}
}

func (pro *scheduleProcessor) determineSleepDuration() time.Duration {
	if pro.sleepUntil.IsZero() {
		return time.Hour
	}
	return time.Until(pro.sleepUntil)
}

func (pro *scheduleProcessor) updateSleepTimer(d time.Duration) {
	if pro.sleepTimer == nil {
		pro.sleepTimer = time.NewTimer(d)
		return
	}
	pro.sleepTimer.Stop()
	pro.sleepTimer.Reset(d)
}
