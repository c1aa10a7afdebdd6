package core_test

import (
	"errors"
	"testing"
	"time"

	"learn.throttlegate/core"
)

var mockTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced clock for deterministic gate tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: mockTime}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGate_FirstCallAlwaysPermitted(t *testing.T) {
	intervals := []time.Duration{0, time.Nanosecond, time.Second, 45000 * time.Second, -time.Second}
	for _, interval := range intervals {
		gate := core.NewGate(interval, "Break")
		if !gate.TryRun() {
			t.Fatalf("first TryRun with interval %v unexpectedly rejected", interval)
		}
		if gate.TotalCalls() != 1 {
			t.Fatalf("expected 1 total call with interval %v, got %d", interval, gate.TotalCalls())
		}
	}
}

func TestGate_ImmediateRepeatRejected(t *testing.T) {
	gate := core.NewGate(time.Second, "Snack")

	if !gate.TryRun() {
		t.Fatal("first TryRun unexpectedly rejected")
	}
	if gate.TryRun() {
		t.Fatal("second TryRun unexpectedly permitted, no time has passed")
	}
	if gate.TotalCalls() != 1 {
		t.Fatalf("expected 1 total call, got %d", gate.TotalCalls())
	}
}

func TestGate_IntervalRespected(t *testing.T) {
	clock := newFakeClock()
	interval := 10 * time.Second
	gate := core.NewGate(interval, "Break", core.WithClock(clock.Now))

	if !gate.TryRun() {
		t.Fatal("first TryRun unexpectedly rejected")
	}

	clock.Advance(interval - time.Nanosecond)
	if gate.TryRun() {
		t.Fatal("TryRun permitted one nanosecond before the interval elapsed")
	}

	clock.Advance(time.Nanosecond)
	if !gate.TryRun() {
		t.Fatal("TryRun rejected exactly at the interval boundary")
	}

	last, ok := gate.LastRunAt()
	if !ok {
		t.Fatal("LastRunAt reported no run")
	}
	if !last.Equal(mockTime.Add(interval)) {
		t.Fatalf("expected last run at %v, got %v", mockTime.Add(interval), last)
	}

	clock.Advance(3 * interval)
	if !gate.TryRun() {
		t.Fatal("TryRun rejected well after the interval")
	}
	if gate.TotalCalls() != 3 {
		t.Fatalf("expected 3 total calls, got %d", gate.TotalCalls())
	}
}

func TestGate_ZeroInterval(t *testing.T) {
	gate := core.NewGate(0, "Always")
	for i := 0; i < 100; i++ {
		if !gate.TryRun() {
			t.Fatalf("TryRun %d unexpectedly rejected with zero interval", i+1)
		}
	}
	if gate.TotalCalls() != 100 {
		t.Fatalf("expected 100 total calls, got %d", gate.TotalCalls())
	}
}

func TestGate_NegativeIntervalTreatedAsZero(t *testing.T) {
	gate := core.NewGate(-5*time.Second, "Negative")
	if gate.Interval() != 0 {
		t.Fatalf("expected interval 0, got %v", gate.Interval())
	}
	if !gate.TryRun() || !gate.TryRun() {
		t.Fatal("negative interval gate should permit every run")
	}
}

func TestGate_CounterMatchesPermittedRuns(t *testing.T) {
	clock := newFakeClock()
	gate := core.NewGate(time.Second, "Counter", core.WithClock(clock.Now))

	// Every 300ms: permitted at 0, 1.2s, 2.4s, 3.6s; rejected otherwise.
	permitted := uint64(0)
	for i := 0; i < 13; i++ {
		if gate.TryRun() {
			permitted++
		}
		clock.Advance(300 * time.Millisecond)
	}
	if permitted != 4 {
		t.Fatalf("expected 4 permitted runs, got %d", permitted)
	}
	if gate.TotalCalls() != permitted {
		t.Fatalf("TotalCalls %d does not match permitted runs %d", gate.TotalCalls(), permitted)
	}
}

func TestGate_RunIfPermitted_ActionCount(t *testing.T) {
	gate := core.NewGate(10*time.Second, "Break")
	counter := 0
	action := func() error {
		counter++
		return nil
	}

	ran, err := gate.RunIfPermitted(action)
	if err != nil {
		t.Fatalf("RunIfPermitted failed: %v", err)
	}
	if !ran {
		t.Fatal("first RunIfPermitted did not run the action")
	}

	for i := 0; i < 100; i++ {
		ran, err := gate.RunIfPermitted(action)
		if err != nil {
			t.Fatalf("RunIfPermitted %d failed: %v", i+1, err)
		}
		if ran {
			t.Fatalf("RunIfPermitted %d unexpectedly ran the action", i+1)
		}
	}

	if counter != 1 {
		t.Fatalf("expected action to run once, ran %d times", counter)
	}
	if gate.TotalCalls() != 1 {
		t.Fatalf("expected 1 total call, got %d", gate.TotalCalls())
	}
}

func TestGate_RunIfPermitted_ErrorPropagates(t *testing.T) {
	gate := core.NewGate(time.Hour, "Failing")
	actionErr := errors.New("action failed")

	ran, err := gate.RunIfPermitted(func() error { return actionErr })
	if !ran {
		t.Fatal("expected the action to run")
	}
	if err != actionErr {
		t.Fatalf("expected the action's error unmodified, got %v", err)
	}
	if gate.TotalCalls() != 1 {
		t.Fatalf("failed action should still count, got %d total calls", gate.TotalCalls())
	}

	ran, err = gate.RunIfPermitted(func() error {
		t.Fatal("action invoked on a rejected run")
		return nil
	})
	if ran || err != nil {
		t.Fatalf("expected rejection without error, got ran=%v err=%v", ran, err)
	}
}

func TestGate_RunIfPermitted_PanicPropagates(t *testing.T) {
	gate := core.NewGate(time.Hour, "Panicking")

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected panic value %q, got %v", "boom", r)
			}
		}()
		_, _ = gate.RunIfPermitted(func() error { panic("boom") })
	}()

	if gate.TotalCalls() != 1 {
		t.Fatalf("panicking action should still count, got %d total calls", gate.TotalCalls())
	}
	if gate.TryRun() {
		t.Fatal("run after panicking action should be throttled")
	}
}

func TestGate_ConcreteScenario(t *testing.T) {
	clock := newFakeClock()
	gate := core.NewGate(10*time.Second, "Break", core.WithClock(clock.Now))

	if !gate.TryRun() {
		t.Fatal("first TryRun unexpectedly rejected")
	}
	for i := 0; i < 100; i++ {
		clock.Advance(5 * time.Millisecond)
		if gate.TryRun() {
			t.Fatalf("TryRun %d unexpectedly permitted within the same second", i+1)
		}
	}
	if gate.TotalCalls() != 1 {
		t.Fatalf("expected 1 total call, got %d", gate.TotalCalls())
	}

	clock.Advance(10 * time.Second)
	if !gate.TryRun() {
		t.Fatal("TryRun rejected after waiting more than the interval")
	}
	if gate.TotalCalls() != 2 {
		t.Fatalf("expected 2 total calls, got %d", gate.TotalCalls())
	}
}

func TestGate_ClockSteppedBackwardsIsPermitted(t *testing.T) {
	clock := newFakeClock()
	gate := core.NewGate(time.Minute, "Backwards", core.WithClock(clock.Now))

	if !gate.TryRun() {
		t.Fatal("first TryRun unexpectedly rejected")
	}
	clock.Advance(-time.Hour)
	if gate.WaitTime() != 0 {
		t.Fatalf("expected zero wait time after the clock stepped back, got %v", gate.WaitTime())
	}
	if !gate.TryRun() {
		t.Fatal("TryRun rejected after the clock stepped backwards")
	}
	if gate.TotalCalls() != 2 {
		t.Fatalf("expected 2 total calls, got %d", gate.TotalCalls())
	}
}

func TestGate_WaitTime(t *testing.T) {
	clock := newFakeClock()
	gate := core.NewGate(10*time.Second, "Wait", core.WithClock(clock.Now))

	if gate.WaitTime() != 0 {
		t.Fatalf("fresh gate should have zero wait time, got %v", gate.WaitTime())
	}
	gate.TryRun()
	clock.Advance(4 * time.Second)
	if got := gate.WaitTime(); got != 6*time.Second {
		t.Fatalf("expected 6s wait time, got %v", got)
	}
	clock.Advance(6 * time.Second)
	if got := gate.WaitTime(); got != 0 {
		t.Fatalf("expected zero wait time at the boundary, got %v", got)
	}
}

func TestGate_TryRunLogged(t *testing.T) {
	gate := core.NewGate(time.Hour, "Snack")
	if !gate.TryRunLogged() {
		t.Fatal("first TryRunLogged unexpectedly rejected")
	}
	if gate.TryRunLogged() {
		t.Fatal("second TryRunLogged unexpectedly permitted")
	}
	if gate.TotalCalls() != 1 {
		t.Fatalf("expected 1 total call, got %d", gate.TotalCalls())
	}
}

func TestGate_Stats(t *testing.T) {
	clock := newFakeClock()
	gate := core.NewGate(10*time.Second, "Break", core.WithClock(clock.Now))

	s := gate.Stats()
	if s.Rate != 0 {
		t.Fatalf("expected zero rate with zero lifetime, got %v", s.Rate)
	}
	if s.LastRunAt != nil {
		t.Fatalf("expected no last run, got %v", *s.LastRunAt)
	}

	gate.TryRun()
	clock.Advance(10 * time.Second)

	s = gate.Stats()
	if s.Label != "Break" || s.Interval != 10*time.Second || s.TotalCalls != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Lifetime != 10*time.Second {
		t.Fatalf("expected 10s lifetime, got %v", s.Lifetime)
	}
	if s.Rate != 0.1 {
		t.Fatalf("expected rate 0.1, got %v", s.Rate)
	}
	if !s.CreatedAt.Equal(mockTime) {
		t.Fatalf("expected created at %v, got %v", mockTime, s.CreatedAt)
	}
	if s.LastRunAt == nil || !s.LastRunAt.Equal(mockTime) {
		t.Fatalf("expected last run at %v, got %v", mockTime, s.LastRunAt)
	}

	want := "Break called 0.10/sec, total calls 1, has been running for 10s"
	if got := gate.FormatStats(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	gate.PrintStats()
}

func TestGate_LifetimeMonotonic(t *testing.T) {
	gate := core.NewGate(time.Second, "Lifetime")
	first := gate.ElapsedLifetime()
	time.Sleep(10 * time.Millisecond)
	second := gate.ElapsedLifetime()
	if second < first {
		t.Fatalf("lifetime went backwards: %v then %v", first, second)
	}
	if second < 10*time.Millisecond {
		t.Fatalf("expected lifetime of at least 10ms, got %v", second)
	}
}

func TestGate_WithDelay(t *testing.T) {
	interval := 100 * time.Millisecond
	gate := core.NewGate(interval, "Snack")

	if !gate.TryRun() {
		t.Fatal("first TryRun unexpectedly rejected")
	}
	if gate.TryRun() {
		t.Fatal("TryRun unexpectedly permitted, no time has passed")
	}

	time.Sleep(interval)
	if !gate.TryRun() {
		t.Fatal("TryRun rejected after sleeping for the interval")
	}

	time.Sleep(10 * time.Millisecond)
	if gate.TryRun() {
		t.Fatal("TryRun permitted 10ms after the last run")
	}

	time.Sleep(interval)
	if !gate.TryRun() {
		t.Fatal("TryRun rejected after sleeping past the interval")
	}
	if gate.TotalCalls() != 3 {
		t.Fatalf("expected 3 total calls, got %d", gate.TotalCalls())
	}
}
