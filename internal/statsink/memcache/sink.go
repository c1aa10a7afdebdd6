// Package ssmemcache provides a Memcache implementation of the stats sink.
package ssmemcache

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/rs/zerolog/log"

	"learn.throttlegate/internal/memcacheiface"
	"learn.throttlegate/internal/statsink"
	"learn.throttlegate/types"
)

// Sink stores each gate's latest snapshot as a JSON item with an expiration.
type Sink struct {
	client    memcacheiface.Client
	keyPrefix string
	ttl       time.Duration
}

// NewSink creates a new Memcache stats sink.
func NewSink(client memcacheiface.Client, keyPrefix string, ttl time.Duration) *Sink {
	log.Info().Str("sink_type", "Memcache").Str("key_prefix", keyPrefix).Dur("ttl", ttl).Msg("Sink: Initialized")
	return &Sink{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Publish overwrites the gate's snapshot item. The memcache client has no
// context support, so ctx is only checked before the call.
func (s *Sink) Publish(ctx context.Context, stats types.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := statsink.Encode(stats)
	if err != nil {
		return err
	}
	key := statsink.Key(s.keyPrefix, stats.Label)
	expirySeconds := int32(s.ttl.Seconds())
	if expirySeconds < 1 {
		expirySeconds = 1
	}
	item := &memcache.Item{
		Key:        key,
		Value:      payload,
		Expiration: expirySeconds,
	}
	if err := s.client.Set(item); err != nil {
		log.Error().Err(err).Str("sink_type", "Memcache").Str("key", key).Msg("Sink: Failed to publish stats")
		return fmt.Errorf("memcache set %s: %w", key, err)
	}
	log.Debug().Str("sink_type", "Memcache").Str("key", key).Uint64("total_calls", stats.TotalCalls).Msg("Sink: Stats published")
	return nil
}

var _ statsink.Sink = (*Sink)(nil)
