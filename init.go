package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tournevent/shipping/internal/config"
	"github.com/tournevent/shipping/internal/orchestrator"
	"github.com/tournevent/shipping/internal/resolver"
	"github.com/tournevent/shipping/internal/storage/memory"
	"github.com/tournevent/shipping/internal/storage/postgres"
	"github.com/tournevent/shipping/internal/telemetry"
	"github.com/tournevent/shipping/pkg/cache"
	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/tournevent/shipping/pkg/fulfillment/clickandcollect"
	"github.com/tournevent/shipping/pkg/fulfillment/homedelivery"
	"github.com/tournevent/shipping/pkg/fulfillment/pudo"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// app holds the wired service and the resources to release on exit.
type app struct {
	cfg      *config.Config
	logger   *otelzap.Logger
	registry *prometheus.Registry
	engine   *orchestrator.Engine
	closers  []func(context.Context) error
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

type stores struct {
	sites   resolver.SiteStore
	options resolver.FulfillmentStore
	methods resolver.ShippingMethodStore
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.ServiceName, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}

	tracer, shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer = otel.Tracer(cfg.ServiceName)
	} else if shutdown != nil {
		a.closers = append(a.closers, shutdown)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(a.registry)

	st, err := a.initStores(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	redisStore := cache.NewRedisStore(cache.RedisConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, func(context.Context) error { return redisStore.Close() })
	if err := redisStore.Ping(ctx); err != nil {
		logger.Warn("Redis unreachable, lookups will fall through to storage", zap.Error(err))
	}
	cacheResolver := cache.NewResolver(redisStore, cfg.CacheTTL(), logger, metrics)

	methods := resolver.NewShippingMethods(cacheResolver, st.methods)
	handlers := initHandlerRegistry(cfg, initDPEClient(cfg), methods, logger)
	handlers.Use(orchestrator.TracingMiddleware(tracer))

	a.engine = orchestrator.New(
		resolver.NewSites(cacheResolver, st.sites),
		resolver.NewFulfillmentOptions(cacheResolver, st.options),
		handlers,
		logger,
		orchestrator.WithTracer(tracer),
		orchestrator.WithRecorder(metrics),
	)

	logger.Info("Service initialized",
		zap.Strings("handlers", handlers.Variants()),
		zap.Duration("cache_ttl", cfg.CacheTTL()),
		zap.Bool("memory_storage", cfg.StorageUseMemory),
	)
	return a, nil
}

// initTracer falls back to the global no-op provider when export is disabled.
func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return otel.Tracer(cfg.ServiceName), nil, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
}

func (a *app) initStores(ctx context.Context) (*stores, error) {
	if a.cfg.StorageUseMemory {
		a.logger.Info("Using seeded in-memory storage")
		m := memory.Seeded()
		return &stores{sites: m.Sites, options: m.Fulfillment, methods: m.ShippingMethods}, nil
	}

	db, err := postgres.Open(ctx, postgres.Config{
		DSN:      a.cfg.PostgresDSN,
		MaxConns: a.cfg.PostgresMaxConns,
		MaxIdle:  a.cfg.PostgresMaxIdle,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeDB(db))
	return &stores{
		sites:   postgres.NewSiteStore(db),
		options: postgres.NewFulfillmentStore(db),
		methods: postgres.NewShippingMethodStore(db),
	}, nil
}

func closeDB(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}

func initDPEClient(cfg *config.Config) dpe.APIClient {
	if cfg.DPEUseMock {
		return dpe.NewMockAPIClient()
	}
	return dpe.NewHTTPAPIClient(dpe.HTTPAPIClientConfig{
		BaseURL: cfg.DPEBaseURL,
		APIKey:  cfg.DPEAPIKey,
		Timeout: cfg.DPETimeout,
	})
}

func initHandlerRegistry(cfg *config.Config, api dpe.APIClient, catalog fulfillment.MethodCatalog, logger *otelzap.Logger) *fulfillment.Registry {
	registry := fulfillment.NewRegistry()

	if cfg.HomeDeliveryEnabled {
		registry.Register(homedelivery.New(api, logger))
	}

	if cfg.ClickAndCollectEnabled {
		registry.Register(clickandcollect.New(api, catalog, logger))
	}

	if cfg.PUDOEnabled {
		registry.Register(pudo.New(api, logger))
		registry.Register(pudo.NewSiteOnly(api, logger))
	}

	return registry
}
