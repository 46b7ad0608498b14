//go:build wireinject
// +build wireinject

package di

import (
	"TopoPull/pkg/config"
	"TopoPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideTableSource,
		ProvideFeatureStore,
		ProvidePublisher,

		// Pipeline and use cases
		ProvidePipeline,
		ProvideStreamHub,
		ProvideFeatureRunner,

		// HTTP surface
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
