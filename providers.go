package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"learn.throttlegate/api"
	"learn.throttlegate/config"
	"learn.throttlegate/metrics"
)

// application is the top-level component graph assembled by Wire.
type application struct {
	Gates    *api.GateSet
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
}

func provideConfig(configPath string) (*config.File, error) {
	return api.LoadConfig(configPath)
}

func provideGateSet(cfg *config.File) (*api.GateSet, func(), error) {
	set, closer, err := api.NewGateSetFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Backend client shutdown failed")
		}
	}
	return set, cleanup, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideCollector(reg *prometheus.Registry) *metrics.Collector {
	return metrics.NewCollector(reg)
}
