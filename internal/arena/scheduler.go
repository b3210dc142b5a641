package arena

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler wraps the clock so session timers (disconnect grace, synthetic
// guess delay, reveal delay, cleanup) are cancellable and fakeable in tests.
type Scheduler struct {
	clock clockwork.Clock
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After runs fn on its own goroutine once d has elapsed, unless the returned
// task is stopped first.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	return &Task{timer: s.clock.AfterFunc(d, fn)}
}

// Task is a pending scheduled call. Stop on a nil task is a no-op so callers
// can stop timer slots without checking whether one was ever armed.
type Task struct {
	timer clockwork.Timer
}

func (t *Task) Stop() {
	if t == nil || t.timer == nil {
		return
	}
	t.timer.Stop()
}
