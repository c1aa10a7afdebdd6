// Package ssredis provides a Redis implementation of the stats sink.
package ssredis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"learn.throttlegate/internal/statsink"
	"learn.throttlegate/types"
)

// Sink stores each gate's latest snapshot as a JSON string with a TTL.
type Sink struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewSink creates a new Redis stats sink.
func NewSink(client *redis.Client, keyPrefix string, ttl time.Duration) *Sink {
	log.Info().Str("sink_type", "Redis").Str("key_prefix", keyPrefix).Dur("ttl", ttl).Msg("Sink: Initialized")
	return &Sink{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Publish overwrites the gate's snapshot key.
func (s *Sink) Publish(ctx context.Context, stats types.Stats) error {
	payload, err := statsink.Encode(stats)
	if err != nil {
		return err
	}
	key := statsink.Key(s.keyPrefix, stats.Label)
	if err := s.client.Set(ctx, key, string(payload), s.ttl).Err(); err != nil {
		log.Error().Err(err).Str("sink_type", "Redis").Str("key", key).Msg("Sink: Failed to publish stats")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	log.Debug().Str("sink_type", "Redis").Str("key", key).Uint64("total_calls", stats.TotalCalls).Msg("Sink: Stats published")
	return nil
}

var _ statsink.Sink = (*Sink)(nil)
