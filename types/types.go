// Package types defines common types and interfaces used throughout the throttle gates.
package types

import (
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/go-redis/redis/v8"
)

// Gate is the interface implemented by every throttle gate.
type Gate interface {
	// TryRun reports whether a run is permitted now and, if so, records it.
	TryRun() bool
	// RunIfPermitted invokes action once if a run is permitted now.
	// It returns whether the action ran and the action's error unmodified.
	RunIfPermitted(action func() error) (bool, error)
	TotalCalls() uint64
	ElapsedLifetime() time.Duration
	// WaitTime returns how long until the next run would be permitted.
	WaitTime() time.Duration
	Stats() Stats
	FormatStats() string
}

// Stats is a point-in-time snapshot of a gate's bookkeeping.
type Stats struct {
	Label      string        `json:"label"`
	Interval   time.Duration `json:"interval"`
	CreatedAt  time.Time     `json:"created_at"`
	LastRunAt  *time.Time    `json:"last_run_at,omitempty"`
	TotalCalls uint64        `json:"total_calls"`
	Lifetime   time.Duration `json:"lifetime"`
	// Rate is TotalCalls divided by Lifetime, in calls per second.
	Rate float64 `json:"rate"`
}

// String renders the human readable report line.
func (s Stats) String() string {
	return fmt.Sprintf("%s called %.2f/sec, total calls %d, has been running for %s",
		s.Label, s.Rate, s.TotalCalls, s.Lifetime)
}

// BackendClients holds initialized backend client instances.
type BackendClients struct {
	RedisClient    *redis.Client
	MemcacheClient *memcache.Client
}
