//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
)

// InitializeApplication tells Wire which top-level components to build.
func InitializeApplication(configPath string) (*application, func(), error) {
	wire.Build(
		provideConfig,
		provideGateSet,
		provideRegistry,
		provideCollector,
		wire.Struct(new(application), "*"),
	)
	return nil, nil, nil
}
