package folio

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a pending one-shot callback created by Scheduler.After.
type Timer struct {
	due      time.Time
	seq      uint64
	fn       func()
	canceled bool
	fired    bool
}

// Cancel prevents the timer from firing. No-op if it already fired.
func (t *Timer) Cancel() {
	if t != nil {
		t.canceled = true
	}
}

// Fired reports whether the callback has run.
func (t *Timer) Fired() bool {
	return t.fired
}

// LoopHandle is a recurring per-frame callback created by Scheduler.Loop.
type LoopHandle struct {
	start    time.Time
	fn       func(elapsed time.Duration)
	canceled bool
}

// Cancel stops the loop. The callback is not invoked again, including later
// in the frame that cancels it.
func (h *LoopHandle) Cancel() {
	if h != nil {
		h.canceled = true
	}
}

// Active reports whether the loop is still scheduled.
func (h *LoopHandle) Active() bool {
	return h != nil && !h.canceled
}

// Scheduler runs timers and frame loops against an injected clock. It has no
// goroutines: Step is called once per frame by the page and runs whatever is
// due at clock.Now().
type Scheduler struct {
	clock  clock.Clock
	start  time.Time
	timers []*Timer
	loops  []*LoopHandle
	seq    uint64
}

// NewScheduler creates a scheduler reading time from clk. A nil clk uses the
// wall clock.
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk, start: clk.Now()}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// Now returns the current time of the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Elapsed returns the time since the scheduler was created.
func (s *Scheduler) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// After schedules fn to run on the first Step at or after d from now.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{due: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Loop schedules fn to run on every Step until the returned handle is
// canceled. fn receives the time elapsed since the loop was created.
func (s *Scheduler) Loop(fn func(elapsed time.Duration)) *LoopHandle {
	h := &LoopHandle{start: s.clock.Now(), fn: fn}
	s.loops = append(s.loops, h)
	return h
}

// Debounce returns a trigger that runs fn once, wait after the most recent
// call. Each call restarts the wait.
func (s *Scheduler) Debounce(wait time.Duration, fn func()) func() {
	var pending *Timer
	return func() {
		pending.Cancel()
		pending = s.After(wait, fn)
	}
}

// Pending returns the number of timers that have neither fired nor been canceled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}

// Loops returns the number of loops that have not been canceled.
func (s *Scheduler) Loops() int {
	n := 0
	for _, h := range s.loops {
		if !h.canceled {
			n++
		}
	}
	return n
}

// Step runs every timer due at the current clock time in due order, then
// every active loop once. Work scheduled by callbacks during Step runs on a
// later Step.
func (s *Scheduler) Step() {
	now := s.clock.Now()

	var due []*Timer
	kept := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.canceled:
		case !t.due.After(now):
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		if t.canceled {
			continue
		}
		t.fired = true
		t.fn()
	}

	loops := s.loops
	n := len(loops)
	for i := 0; i < n; i++ {
		h := loops[i]
		if h.canceled {
			continue
		}
		h.fn(now.Sub(h.start))
	}

	active := s.loops[:0]
	for _, h := range s.loops {
		if !h.canceled {
			active = append(active, h)
		}
	}
	for i := len(active); i < len(s.loops); i++ {
		s.loops[i] = nil
	}
	s.loops = active
}
