package core

import (
	"sync"
	"time"

	"learn.throttlegate/types"
)

// SyncGate guards a ThrottleGate with a mutex so it can be shared between goroutines.
type SyncGate struct {
	mu   sync.Mutex
	gate *ThrottleGate
}

// NewSyncGate creates a mutex-guarded gate. It accepts the same options as NewGate.
func NewSyncGate(interval time.Duration, label string, opts ...NewGateOption) *SyncGate {
	return &SyncGate{gate: NewGate(interval, label, opts...)}
}

func (s *SyncGate) TryRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.TryRun()
}

// TryRunLogged behaves like ThrottleGate.TryRunLogged.
func (s *SyncGate) TryRunLogged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.TryRunLogged()
}

// RunIfPermitted records the run under the lock and invokes action after releasing it,
// so a slow action does not hold up other evaluations.
func (s *SyncGate) RunIfPermitted(action func() error) (bool, error) {
	if !s.TryRun() {
		return false, nil
	}
	return true, action()
}

func (s *SyncGate) TotalCalls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.TotalCalls()
}

func (s *SyncGate) ElapsedLifetime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.ElapsedLifetime()
}

func (s *SyncGate) WaitTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.WaitTime()
}

func (s *SyncGate) Stats() types.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.Stats()
}

func (s *SyncGate) FormatStats() string {
	return s.Stats().String()
}

// Label and Interval never change after construction and need no lock.
func (s *SyncGate) Label() string {
	return s.gate.Label()
}

func (s *SyncGate) Interval() time.Duration {
	return s.gate.Interval()
}

var _ types.Gate = (*SyncGate)(nil)
