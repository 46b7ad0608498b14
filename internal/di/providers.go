package di

import (
	"context"
	"fmt"
	"time"

	domrepo "TopoPull/internal/domain/repository"
	"TopoPull/internal/handler/api"
	"TopoPull/internal/handler/ws"
	internalrepo "TopoPull/internal/repository"
	"TopoPull/internal/services/ratelimit"
	"TopoPull/internal/services/tda"
	"TopoPull/internal/usecase"
	xcache "TopoPull/pkg/cache"
	pkgch "TopoPull/pkg/clickhouse"
	"TopoPull/pkg/config"
	xhttp "TopoPull/pkg/http"
	pkgkafka "TopoPull/pkg/kafka"
	applogger "TopoPull/pkg/logger"
	"TopoPull/pkg/metrics"
	"TopoPull/pkg/server"
)

func sinkHasClickHouse(cfg *config.Config) bool {
	return cfg.Sink.Type == "clickhouse" || cfg.Sink.Type == "both"
}

func sinkHasKafka(cfg *config.Config) bool {
	return cfg.Sink.Type == "kafka" || cfg.Sink.Type == "both"
}

// ProvideLogger creates the application logger. Production environments
// log JSON; everything else gets the console format.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{
		Level:  "info",
		Format: format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// sink does not include ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !sinkHasClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database, "tda_features")); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the sink
// does not include Kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !sinkHasKafka(cfg) {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideCache creates the response cache: layered when Redis is
// reachable, in-memory otherwise, nil when disabled.
func ProvideCache(cfg *config.Config) (xcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	memOpts := []xcache.MemoryOption{xcache.WithMemoryMaxSize(cfg.Cache.MemSize)}
	if !cfg.Cache.Redis.Enabled {
		return xcache.NewMemoryCache(memOpts...), nil
	}
	redisCache, err := xcache.NewRedisCache(
		xcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		xcache.WithRedisPassword(cfg.Cache.Redis.Password),
		xcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return xcache.NewLayeredCache(redisCache, memOpts...), nil
}

// ProvideTableSource creates the CSV input source.
func ProvideTableSource(cfg *config.Config) domrepo.TableSource {
	return internalrepo.NewCSVTableSource(cfg.Input.CSVPath, cfg.Input.DateColumn)
}

// ProvideFeatureStore creates the ClickHouse feature store, or nil.
func ProvideFeatureStore(chClient *pkgch.Client) domrepo.FeatureStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewCHFeatureStore(chClient, "tda_features")
}

// ProvidePublisher creates the Kafka feature publisher, or nil.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePipeline assembles the batch pipeline stages from config.
func ProvidePipeline(cfg *config.Config, m domrepo.Metrics) (*tda.Pipeline, error) {
	sel, err := tda.NewSelector(cfg.Pipeline.Start, cfg.Pipeline.End, cfg.Pipeline.Window)
	if err != nil {
		return nil, err
	}
	comp, err := tda.NewComputer(tda.ComputerConfig{
		MaxComplexDimension:  cfg.Pipeline.MaxComplexDimension,
		MaxEdgeLength:        cfg.Pipeline.MaxEdgeLength,
		CollapseEdges:        cfg.Pipeline.CollapseEdges,
		MaxHomologyDimension: cfg.Pipeline.MaxHomologyDimension,
		OnlyThisDimension:    cfg.Pipeline.OnlyThisDimension,
		CoefficientField:     cfg.Pipeline.CoefficientField,
		MinPersistence:       cfg.Pipeline.MinPersistence,
		Parallelism:          cfg.Pipeline.Parallelism,
	})
	if err != nil {
		return nil, err
	}
	comp.SetMetrics(m)
	land, err := tda.NewLandscape(cfg.Pipeline.Landscape.Layers, cfg.Pipeline.Landscape.Resolution)
	if err != nil {
		return nil, err
	}
	return &tda.Pipeline{Selector: sel, Computer: comp, Landscape: land}, nil
}

// ProvideStreamHub creates the WebSocket hub, or nil when disabled.
func ProvideStreamHub(cfg *config.Config, l *applogger.Logger) *ws.Hub {
	if !cfg.Stream.Enabled {
		return nil
	}
	return ws.NewHub(l, ws.WithSendBuffer(cfg.Stream.BufferSize))
}

// ProvideFeatureRunner creates the runner with the configured sinks.
func ProvideFeatureRunner(
	source domrepo.TableSource,
	store domrepo.FeatureStore,
	pub domrepo.Publisher,
	hub *ws.Hub,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.FeatureRunner {
	opts := []usecase.RunnerOption{usecase.WithLogReturns(cfg.Input.LogReturns)}
	if store != nil {
		opts = append(opts, usecase.WithStore(store))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if hub != nil {
		opts = append(opts, usecase.WithBroadcaster(hub))
	}
	return usecase.NewFeatureRunner(source, m, l, opts...)
}

// ProvideRateLimiter creates the per-client limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler creates the HTTP handler with its optional pieces.
func ProvideHTTPHandler(
	l *applogger.Logger,
	runner *usecase.FeatureRunner,
	cache xcache.Service,
	limiter *ratelimit.Limiter,
	hub *ws.Hub,
	cfg *config.Config,
) xhttp.Handler {
	opts := []api.HandlerOption{}
	if cache != nil {
		opts = append(opts, api.WithCache(cache, cfg.Cache.TTL))
	}
	if cfg.RateLimit.Capacity > 0 {
		opts = append(opts, api.WithRateLimit(limiter, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	if hub != nil {
		opts = append(opts, api.WithStreamHub(hub))
	}
	return api.NewFeaturesHandler(l, runner, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.FeatureRunner,
	pipe *tda.Pipeline,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	hub *ws.Hub,
	cache xcache.Service,
) *server.App {
	return server.New(cfg, l, runner, pipe, handler, chClient, hub, cache)
}
