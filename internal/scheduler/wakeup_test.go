package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWakeup_FiresOnce(t *testing.T) {
	var fired atomic.Int32
	w := NewWakeup(func() { fired.Add(1) })

	w.Arm(time.Now().Add(30 * time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("expected exactly one fire, got %d", got)
	}
	if _, armed := w.Target(); armed {
		t.Error("expected disarmed after firing")
	}
}

func TestWakeup_RearmReplaces(t *testing.T) {
	var fired atomic.Int32
	w := NewWakeup(func() { fired.Add(1) })

	// The first schedule must be superseded, not stacked
	w.Arm(time.Now().Add(30 * time.Millisecond))
	w.Arm(time.Now().Add(60 * time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("expected one fire after re-arm, got %d", got)
	}
}

func TestWakeup_CancelStopsTimer(t *testing.T) {
	var fired atomic.Int32
	w := NewWakeup(func() { fired.Add(1) })

	w.Arm(time.Now().Add(30 * time.Millisecond))
	w.Cancel()
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("expected no fire after cancel, got %d", got)
	}
	if _, armed := w.Target(); armed {
		t.Error("expected disarmed after cancel")
	}
}

func TestWakeup_PastInstantDisarms(t *testing.T) {
	var fired atomic.Int32
	w := NewWakeup(func() { fired.Add(1) })

	w.Arm(time.Now().Add(-time.Second))
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("past instants must not fire, got %d", got)
	}
	if _, armed := w.Target(); armed {
		t.Error("expected disarmed for past instant")
	}
}

func TestWakeup_PastInstantCancelsPending(t *testing.T) {
	var fired atomic.Int32
	w := NewWakeup(func() { fired.Add(1) })

	w.Arm(time.Now().Add(30 * time.Millisecond))
	w.Arm(time.Now().Add(-time.Second))
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("expected pending schedule cancelled, got %d fires", got)
	}
}

func TestWakeup_TargetReporting(t *testing.T) {
	w := NewWakeup(func() {})

	if _, armed := w.Target(); armed {
		t.Error("fresh wakeup must be disarmed")
	}

	at := time.Now().Add(time.Hour)
	w.Arm(at)
	target, armed := w.Target()
	if !armed {
		t.Fatal("expected armed")
	}
	if !target.Equal(at) {
		t.Errorf("expected target %v, got %v", at, target)
	}

	w.Cancel()
	if target, _ := w.Target(); !target.IsZero() {
		t.Errorf("expected zero target after cancel, got %v", target)
	}
}

func TestWakeup_RearmAfterFire(t *testing.T) {
	ch := make(chan struct{}, 2)
	w := NewWakeup(func() { ch <- struct{}{} })

	w.Arm(time.Now().Add(20 * time.Millisecond))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("first fire never happened")
	}

	// A fired handle must accept a new schedule
	w.Arm(time.Now().Add(20 * time.Millisecond))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("second fire never happened")
	}
}
