package internal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"learn.throttlegate/config"
)

// LoadConfig reads, unmarshals, defaults and validates the YAML config.
func LoadConfig(path string) (*config.File, error) {
	log.Info().Str("config_path", path).Msg("Loading configuration")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	log.Info().Str("config_path", path).Int("gates", len(cfg.Gates)).Msg("Configuration loaded successfully")
	return cfg, nil
}

// ParseConfig unmarshals, defaults and validates raw YAML.
func ParseConfig(data []byte) (*config.File, error) {
	var cfg config.File
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// InitRedisClient initializes and pings a Redis client based on config.
func InitRedisClient(params *config.RedisBackendConfig) (*redis.Client, error) {
	if params == nil {
		return nil, fmt.Errorf("redis backend selected but redis_params are missing in config")
	}
	log.Info().Str("address", params.Address).Int("db", params.DB).Msg("Initializing Redis client")
	client := redis.NewClient(&redis.Options{
		Addr:     params.Address,
		Password: params.Password,
		DB:       params.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error().Err(err).Str("address", params.Address).Msg("Redis ping failed")
		// Close the client if ping fails to prevent resource leaks
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", params.Address, err)
	}
	log.Info().Str("address", params.Address).Msg("Connected to Redis successfully")
	return client, nil
}

// InitMemcacheClient initializes and pings a Memcache client based on config.
func InitMemcacheClient(params *config.MemcacheBackendConfig) (*memcache.Client, error) {
	if params == nil || len(params.Addresses) == 0 {
		return nil, fmt.Errorf("memcache backend selected but memcache_params are missing in config")
	}
	log.Info().Strs("addresses", params.Addresses).Msg("Initializing Memcache client")
	client := memcache.New(params.Addresses...)
	client.Timeout = 5 * time.Second
	if err := client.Ping(); err != nil {
		log.Error().Err(err).Strs("addresses", params.Addresses).Msg("Memcache ping failed")
		client.Close()
		return nil, fmt.Errorf("failed to connect to Memcache at %v: %w", params.Addresses, err)
	}
	log.Info().Strs("addresses", params.Addresses).Msg("Connected to Memcache successfully")
	return client, nil
}
