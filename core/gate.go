// Package core provides the ThrottleGate, which lets an action run at most once per interval
// and keeps statistics about how often it actually ran.
package core

import (
	"time"

	"github.com/rs/zerolog/log"

	"learn.throttlegate/types"
)

// ThrottleGate decides whether an action may run now.
// It is not safe for concurrent use; see SyncGate.
type ThrottleGate struct {
	label     string
	interval  time.Duration
	createdAt time.Time

	lastRunAt  time.Time
	hasRun     bool
	totalCalls uint64

	nowFunc func() time.Time
}

// NewGateOption is a function type for setting options on a ThrottleGate.
type NewGateOption func(*ThrottleGate)

// WithClock sets a custom clock (nowFunc) for the ThrottleGate.
func WithClock(nowFunc func() time.Time) NewGateOption {
	return func(g *ThrottleGate) {
		g.nowFunc = nowFunc
	}
}

// NewGate creates a gate that permits at most one run per interval.
// A zero interval permits every run; a negative interval is treated as zero.
func NewGate(interval time.Duration, label string, opts ...NewGateOption) *ThrottleGate {
	g := &ThrottleGate{
		label:    label,
		interval: interval,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.interval < 0 {
		log.Warn().Str("gate", label).Dur("interval", interval).Msg("Gate: Negative interval treated as zero")
		g.interval = 0
	}
	g.createdAt = g.nowFunc()
	log.Debug().Str("gate", label).Dur("interval", g.interval).Msg("Gate: Initialized")
	return g
}

// TryRun reports whether a run is permitted now. A permitted run is recorded
// before TryRun returns; a rejected one leaves the gate untouched.
func (g *ThrottleGate) TryRun() bool {
	now := g.nowFunc()
	if !g.permitted(now) {
		log.Debug().Str("gate", g.label).Uint64("total_calls", g.totalCalls).Msg("Gate: Run rejected")
		return false
	}
	g.lastRunAt = now
	g.hasRun = true
	g.totalCalls++
	log.Debug().Str("gate", g.label).Uint64("total_calls", g.totalCalls).Msg("Gate: Run permitted")
	return true
}

// permitted treats a negative elapsed time (clock stepped backwards) as a satisfied interval.
func (g *ThrottleGate) permitted(now time.Time) bool {
	if !g.hasRun {
		return true
	}
	elapsed := now.Sub(g.lastRunAt)
	return elapsed < 0 || elapsed >= g.interval
}

// TryRunLogged behaves like TryRun and additionally logs when the run is throttled.
func (g *ThrottleGate) TryRunLogged() bool {
	if g.TryRun() {
		return true
	}
	now := g.nowFunc()
	log.Info().
		Str("gate", g.label).
		Dur("since_last_run", now.Sub(g.lastRunAt)).
		Dur("wait", g.waitTime(now)).
		Msgf("%s throttled", g.label)
	return false
}

// RunIfPermitted calls action exactly once when a run is permitted and never otherwise.
// The run is counted before action is invoked, so an action that fails or panics
// still counts; its error is returned unmodified.
func (g *ThrottleGate) RunIfPermitted(action func() error) (bool, error) {
	if !g.TryRun() {
		return false, nil
	}
	return true, action()
}

// TotalCalls returns the number of permitted runs since construction.
func (g *ThrottleGate) TotalCalls() uint64 {
	return g.totalCalls
}

// ElapsedLifetime returns the time since the gate was created.
func (g *ThrottleGate) ElapsedLifetime() time.Duration {
	return g.nowFunc().Sub(g.createdAt)
}

func (g *ThrottleGate) Label() string {
	return g.label
}

func (g *ThrottleGate) Interval() time.Duration {
	return g.interval
}

func (g *ThrottleGate) CreatedAt() time.Time {
	return g.createdAt
}

// LastRunAt returns the time of the most recent permitted run, if any.
func (g *ThrottleGate) LastRunAt() (time.Time, bool) {
	return g.lastRunAt, g.hasRun
}

// WaitTime returns how long until the next run would be permitted, or zero if it is permitted now.
func (g *ThrottleGate) WaitTime() time.Duration {
	return g.waitTime(g.nowFunc())
}

func (g *ThrottleGate) waitTime(now time.Time) time.Duration {
	if g.permitted(now) {
		return 0
	}
	return g.interval - now.Sub(g.lastRunAt)
}

// Stats returns a snapshot of the gate computed from a single clock reading.
func (g *ThrottleGate) Stats() types.Stats {
	now := g.nowFunc()
	lifetime := now.Sub(g.createdAt)
	s := types.Stats{
		Label:      g.label,
		Interval:   g.interval,
		CreatedAt:  g.createdAt,
		TotalCalls: g.totalCalls,
		Lifetime:   lifetime,
	}
	if g.hasRun {
		last := g.lastRunAt
		s.LastRunAt = &last
	}
	if lifetime > 0 {
		s.Rate = float64(g.totalCalls) / lifetime.Seconds()
	}
	return s
}

// FormatStats returns the report line, e.g.
// "Break called 0.10/sec, total calls 1, has been running for 10.2s".
func (g *ThrottleGate) FormatStats() string {
	return g.Stats().String()
}

// PrintStats logs the report line at info level.
func (g *ThrottleGate) PrintStats() {
	s := g.Stats()
	log.Info().
		Str("gate", s.Label).
		Uint64("total_calls", s.TotalCalls).
		Float64("rate", s.Rate).
		Dur("lifetime", s.Lifetime).
		Msg(s.String())
}

var _ types.Gate = (*ThrottleGate)(nil)
