package dispatch

import (
	"time"

	"github.com/io-da/schedule"
)

type scheduledCommand struct {
	cmd      Command
	sch      *schedule.Schedule
	last     *Async
	finished bool
}

func newScheduledCommand(cmd Command, sch *schedule.Schedule) *scheduledCommand {
	return &scheduledCommand{
		cmd: cmd,
		sch: sch,
	}
}

// following returns the next firing time, advancing a schedule that has not started yet.
// ok is false once the schedule has no firing left.
func (schCmd *scheduledCommand) following() (at time.Time, ok bool) {
	at = schCmd.sch.Following()
	if at.IsZero() {
		if err := schCmd.sch.Next(); err != nil {
			return time.Time{}, false
		}
		at = schCmd.sch.Following()
	}
	return at, true
}
