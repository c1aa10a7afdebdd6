package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BackendType represents the storage backend stats snapshots are exported to.
type BackendType string

const (
	None     BackendType = "none"
	Redis    BackendType = "redis"
	Memcache BackendType = "memcache"
)

// File represents the top-level structure of the configuration file.
type File struct {
	Gates     []GateConfig `yaml:"gates"`
	StatsSink SinkConfig   `yaml:"stats_sink,omitempty"`
}

// GateConfig holds the configuration for a single throttle gate.
type GateConfig struct {
	Label    string        `yaml:"label"`
	Interval time.Duration `yaml:"interval"`
	// Route is the HTTP path served behind this gate. Optional.
	Route string `yaml:"route,omitempty"`
}

// SinkConfig holds parameters for exporting gate stats snapshots.
type SinkConfig struct {
	Backend   BackendType   `yaml:"backend"`
	KeyPrefix string        `yaml:"key_prefix,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`

	RedisParams    *RedisBackendConfig    `yaml:"redis_params,omitempty"`
	MemcacheParams *MemcacheBackendConfig `yaml:"memcache_params,omitempty"`
}

// RedisBackendConfig holds parameters for the Redis backend.
type RedisBackendConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// MemcacheBackendConfig holds parameters for the Memcache backend.
type MemcacheBackendConfig struct {
	Addresses []string `yaml:"addresses"`
}

const (
	DefaultKeyPrefix = "throttlegate"
	DefaultTTL       = 5 * time.Minute
)

// ApplyDefaults fills in optional fields left empty in the file.
func (f *File) ApplyDefaults() {
	if f.StatsSink.Backend == "" {
		f.StatsSink.Backend = None
	}
	if f.StatsSink.KeyPrefix == "" {
		f.StatsSink.KeyPrefix = DefaultKeyPrefix
	}
	if f.StatsSink.TTL == 0 {
		f.StatsSink.TTL = DefaultTTL
	}
}

// Validate checks the gate and sink sections. Gate labels are display strings
// and need not be unique; routes must be.
func (f *File) Validate() error {
	if len(f.Gates) == 0 {
		return errors.New("no gate configurations found")
	}
	routes := make(map[string]string)
	for i, g := range f.Gates {
		if g.Label == "" {
			return fmt.Errorf("gate #%d: configuration missing 'label' field", i+1)
		}
		if g.Interval < 0 {
			return fmt.Errorf("gate '%s': interval must not be negative, got %s", g.Label, g.Interval)
		}
		if g.Route == "" {
			continue
		}
		if !strings.HasPrefix(g.Route, "/") {
			return fmt.Errorf("gate '%s': route '%s' must start with '/'", g.Label, g.Route)
		}
		if other, ok := routes[g.Route]; ok {
			return fmt.Errorf("gate '%s': route '%s' already used by gate '%s'", g.Label, g.Route, other)
		}
		routes[g.Route] = g.Label
	}
	return f.StatsSink.Validate()
}

// Validate checks that the selected backend has its parameters.
func (s SinkConfig) Validate() error {
	if s.TTL < 0 {
		return fmt.Errorf("stats sink: ttl must not be negative, got %s", s.TTL)
	}
	switch s.Backend {
	case "", None:
		return nil
	case Redis:
		if s.RedisParams == nil || s.RedisParams.Address == "" {
			return errors.New("stats sink: redis backend selected but redis_params are missing")
		}
		return nil
	case Memcache:
		if s.MemcacheParams == nil || len(s.MemcacheParams.Addresses) == 0 {
			return errors.New("stats sink: memcache backend selected but memcache_params are missing")
		}
		return nil
	default:
		return fmt.Errorf("stats sink: unsupported backend type '%s'", s.Backend)
	}
}
