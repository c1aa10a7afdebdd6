package factory

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"learn.throttlegate/config"
	"learn.throttlegate/internal/statsink"
	ssmemcache "learn.throttlegate/internal/statsink/memcache"
	ssredis "learn.throttlegate/internal/statsink/redis"
	"learn.throttlegate/types"
)

// CreateSink creates a stats sink based on the configuration and available clients.
func CreateSink(cfg config.SinkConfig, clients types.BackendClients) (statsink.Sink, error) {
	log.Info().Str("backend", string(cfg.Backend)).Str("key_prefix", cfg.KeyPrefix).Msg("Factory(StatsSink): Creating sink")
	switch cfg.Backend {
	case "", config.None:
		return statsink.Discard, nil
	case config.Redis:
		if clients.RedisClient == nil {
			err := fmt.Errorf("redis client is required but not provided for redis stats sink")
			log.Error().Err(err).Msg("Factory(StatsSink): Creation failed")
			return nil, err
		}
		return ssredis.NewSink(clients.RedisClient, cfg.KeyPrefix, cfg.TTL), nil
	case config.Memcache:
		if clients.MemcacheClient == nil {
			err := fmt.Errorf("memcache client is required but not provided for memcache stats sink")
			log.Error().Err(err).Msg("Factory(StatsSink): Creation failed")
			return nil, err
		}
		return ssmemcache.NewSink(clients.MemcacheClient, cfg.KeyPrefix, cfg.TTL), nil
	default:
		err := fmt.Errorf("unsupported backend type '%s' for stats sink", cfg.Backend)
		log.Error().Err(err).Msg("Factory(StatsSink): Creation failed")
		return nil, err
	}
}
