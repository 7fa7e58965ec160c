package scheduler

import (
	"sync"
	"time"
)

// Wakeup is an owned one-shot timer handle. Arming always replaces the
// previous schedule, so at most one wake instant is pending at any time;
// re-arming never stacks timers.
type Wakeup struct {
	mu     sync.Mutex
	timer  *time.Timer
	target time.Time
	armed  bool
	fn     func()
}

// NewWakeup creates a disarmed handle that will invoke fn when it fires.
func NewWakeup(fn func()) *Wakeup {
	return &Wakeup{fn: fn}
}

// Arm schedules fn for the given instant, cancelling any earlier schedule.
// Instants not strictly in the future disarm instead.
func (w *Wakeup) Arm(at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		w.cancelLocked()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(d, w.fire)
	} else {
		w.timer.Stop()
		w.timer.Reset(d)
	}
	w.target = at
	w.armed = true
}

// Cancel disarms the pending wake instant, if any.
func (w *Wakeup) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
}

func (w *Wakeup) cancelLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.armed = false
	w.target = time.Time{}
}

// Target returns the armed wake instant, ok=false when disarmed.
func (w *Wakeup) Target() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target, w.armed
}

func (w *Wakeup) fire() {
	w.mu.Lock()
	w.armed = false
	w.mu.Unlock()
	w.fn()
}
