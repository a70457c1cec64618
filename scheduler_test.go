package folio

import (
	"slices"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestAfterFiresWhenDue(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	fired := false
	timer := s.After(100*time.Millisecond, func() { fired = true })

	clk.Add(99 * time.Millisecond)
	s.Step()
	if fired || timer.Fired() {
		t.Fatal("fired early")
	}
	clk.Add(time.Millisecond)
	s.Step()
	if !fired || !timer.Fired() {
		t.Fatal("did not fire when due")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d", s.Pending())
	}
}

func TestAfterRunsInDueOrder(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	var order []int
	s.After(200*time.Millisecond, func() { order = append(order, 2) })
	s.After(100*time.Millisecond, func() { order = append(order, 1) })
	s.After(100*time.Millisecond, func() { order = append(order, 11) })
	clk.Add(time.Second)
	s.Step()
	if !slices.Equal(order, []int{1, 11, 2}) {
		t.Errorf("order = %v", order)
	}
}

func TestTimerCancel(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	fired := false
	timer := s.After(0, func() { fired = true })
	timer.Cancel()
	clk.Add(time.Second)
	s.Step()
	if fired {
		t.Error("canceled timer fired")
	}
	var nilTimer *Timer
	nilTimer.Cancel()
}

func TestWorkScheduledDuringStepRunsLater(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	inner := false
	s.After(0, func() {
		s.After(0, func() { inner = true })
	})
	s.Step()
	if inner {
		t.Fatal("nested timer ran in the same step")
	}
	s.Step()
	if !inner {
		t.Fatal("nested timer did not run on the next step")
	}
}

func TestLoopElapsedAndCancel(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	var seen []time.Duration
	var h *LoopHandle
	h = s.Loop(func(elapsed time.Duration) {
		seen = append(seen, elapsed)
		if len(seen) == 3 {
			h.Cancel()
		}
	})
	for i := 0; i < 5; i++ {
		clk.Add(frameDuration)
		s.Step()
	}
	want := []time.Duration{frameDuration, 2 * frameDuration, 3 * frameDuration}
	if !slices.Equal(seen, want) {
		t.Errorf("elapsed = %v, want %v", seen, want)
	}
	if h.Active() {
		t.Error("loop should be inactive after Cancel")
	}
}

func TestDebounceFiresOnceAfterLastCall(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	calls := 0
	trigger := s.Debounce(10*time.Millisecond, func() { calls++ })

	for i := 0; i < 5; i++ {
		trigger()
		clk.Add(5 * time.Millisecond)
		s.Step()
	}
	if calls != 0 {
		t.Fatalf("fired during the burst: %d", calls)
	}
	clk.Add(5 * time.Millisecond)
	s.Step()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	clk.Add(time.Second)
	s.Step()
	if calls != 1 {
		t.Errorf("calls = %d after idle, want 1", calls)
	}
}

func TestElapsed(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk)
	clk.Add(1500 * time.Millisecond)
	if s.Elapsed() != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v", s.Elapsed())
	}
}
