// Package statsink exports gate stats snapshots to an external store for dashboards.
// Snapshots are write-only: nothing is read back into a gate.
package statsink

import (
	"context"
	"encoding/json"
	"fmt"

	"learn.throttlegate/types"
)

// Sink publishes gate stats snapshots.
type Sink interface {
	Publish(ctx context.Context, stats types.Stats) error
}

type discard struct{}

func (discard) Publish(context.Context, types.Stats) error { return nil }

// Discard is a Sink that drops every snapshot.
var Discard Sink = discard{}

// Key returns the store key for a gate's snapshot.
func Key(prefix, label string) string {
	return fmt.Sprintf("%s:stats:%s", prefix, label)
}

// Encode serializes a snapshot for storage.
func Encode(stats types.Stats) ([]byte, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encode stats for gate '%s': %w", stats.Label, err)
	}
	return payload, nil
}
