package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	apiinternal "learn.throttlegate/api/internal"
	"learn.throttlegate/config"
	"learn.throttlegate/core"
	"learn.throttlegate/internal/factory"
	"learn.throttlegate/internal/statsink"
	"learn.throttlegate/types"
)

// Entry pairs a configured gate with its configuration.
type Entry struct {
	Config config.GateConfig
	Gate   *core.SyncGate
}

// GateSet holds every configured gate, in file order, and the sink their stats are exported to.
type GateSet struct {
	entries []Entry
	sink    statsink.Sink
}

// NewGateSet wraps already-built entries; a nil sink discards snapshots.
func NewGateSet(entries []Entry, sink statsink.Sink) *GateSet {
	if sink == nil {
		sink = statsink.Discard
	}
	return &GateSet{entries: entries, sink: sink}
}

// Entries returns the gates in configuration order.
func (s *GateSet) Entries() []Entry {
	return s.entries
}

// Report writes each gate's report line to w, logs it and publishes the snapshot.
// Sink failures do not stop the report; they are joined and returned at the end.
func (s *GateSet) Report(ctx context.Context, w io.Writer) error {
	var errs []error
	for _, e := range s.entries {
		stats := e.Gate.Stats()
		if _, err := fmt.Fprintln(w, stats.String()); err != nil {
			return fmt.Errorf("write report for gate '%s': %w", stats.Label, err)
		}
		log.Info().Str("gate", stats.Label).Uint64("total_calls", stats.TotalCalls).Float64("rate", stats.Rate).Dur("lifetime", stats.Lifetime).Msg(stats.String())
		if err := s.sink.Publish(ctx, stats); err != nil {
			errs = append(errs, fmt.Errorf("gate '%s': %w", stats.Label, err))
		}
	}
	return errors.Join(errs...)
}

// clientCloser is an internal type that holds backend clients and implements io.Closer.
type clientCloser struct {
	clients types.BackendClients
}

// Close gracefully shuts down all initialized backend clients held by the clientCloser.
func (c *clientCloser) Close() error {
	log.Info().Msg("API: Starting backend client shutdown")
	var errs []error

	if c.clients.RedisClient != nil {
		if err := c.clients.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
			log.Error().Err(err).Msg("API: Error closing Redis client")
		} else {
			log.Info().Msg("API: Redis client closed successfully")
		}
	}

	if c.clients.MemcacheClient != nil {
		if err := c.clients.MemcacheClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Memcache client: %w", err))
			log.Error().Err(err).Msg("API: Error closing Memcache client")
		} else {
			log.Info().Msg("API: Memcache client closed successfully")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during client shutdown: %w", errors.Join(errs...))
	}
	log.Info().Msg("API: Backend client shutdown complete")
	return nil
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*config.File, error) {
	return apiinternal.LoadConfig(path)
}

// NewGates builds one SyncGate per configured gate.
func NewGates(cfg *config.File, opts ...core.NewGateOption) []Entry {
	entries := make([]Entry, 0, len(cfg.Gates))
	for _, gc := range cfg.Gates {
		entries = append(entries, Entry{Config: gc, Gate: core.NewSyncGate(gc.Interval, gc.Label, opts...)})
		log.Info().Str("gate", gc.Label).Dur("interval", gc.Interval).Str("route", gc.Route).Msg("API: Gate created")
	}
	return entries
}

// NewBackendClients initializes only the clients the stats sink needs.
func NewBackendClients(cfg config.SinkConfig) (types.BackendClients, error) {
	var clients types.BackendClients
	switch cfg.Backend {
	case config.Redis:
		client, err := apiinternal.InitRedisClient(cfg.RedisParams)
		if err != nil {
			return clients, err
		}
		clients.RedisClient = client
	case config.Memcache:
		client, err := apiinternal.InitMemcacheClient(cfg.MemcacheParams)
		if err != nil {
			return clients, err
		}
		clients.MemcacheClient = client
	}
	return clients, nil
}

// NewGateSetFromConfig initializes backend clients, the stats sink and the gates.
// The returned io.Closer shuts down the backend clients.
func NewGateSetFromConfig(cfg *config.File) (*GateSet, io.Closer, error) {
	clients, err := NewBackendClients(cfg.StatsSink)
	if err != nil {
		log.Error().Err(err).Msg("API: Initialization failed: backend client")
		return nil, nil, fmt.Errorf("stats sink backend: %w", err)
	}
	closer := &clientCloser{clients: clients}

	sink, err := factory.CreateSink(cfg.StatsSink, clients)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("stats sink: %w", err)
	}

	set := NewGateSet(NewGates(cfg), sink)
	log.Info().Int("gates", len(set.entries)).Msg("API: All gates initialized")
	return set, closer, nil
}

// NewGatesFromConfigPath loads config, initializes any needed backend clients,
// and returns the gate set and an io.Closer for backend clients.
func NewGatesFromConfigPath(configPath string) (*GateSet, io.Closer, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("config_path", configPath).Msg("API: Initialization failed: Error loading configuration")
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return NewGateSetFromConfig(cfg)
}
