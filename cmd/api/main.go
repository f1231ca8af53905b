package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nodeorb/scm-risk-engine/internal/api/rest"
	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/cache"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/database"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/events"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/repository"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"github.com/nodeorb/scm-risk-engine/internal/service/access"
	"github.com/nodeorb/scm-risk-engine/internal/service/conflict"
	"github.com/nodeorb/scm-risk-engine/internal/service/geofence"
	"github.com/nodeorb/scm-risk-engine/internal/service/hos"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
	"github.com/nodeorb/scm-risk-engine/internal/service/sanctions"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("risk engine stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	provider, err := telemetry.InitializeOpenTelemetry(ctx, serviceName, cfg)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	registry, err := metrics.NewRegistry(serviceName)
	if err != nil {
		return fmt.Errorf("create metrics registry: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	pool, err := database.NewConnectionPool(ctx, cfg.Database, logger, registry)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	healthChecks := map[string]rest.HealthCheck{"postgres": pool.HealthCheck}

	repos := repository.NewRepositories(pool.Pool(), staticMedianSource(cfg.Engine))

	var passports compliance.ComplianceRepository = repos.Compliance
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		passports = cache.NewPassportCache(repos.Compliance, client, cfg.Redis.PassportTTL, logger, registry)
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	var transport events.Transport
	if cfg.Kafka.Enabled {
		producer, err := events.NewFranzProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		kt := events.NewKafkaTransport(logger, producer, cfg.Kafka.SecurityTopic, cfg.Kafka.ProduceTimeout)
		defer kt.Close()
		transport = kt
		healthChecks["kafka"] = producer.Ping
	}
	bus := events.NewSecurityEventBus(transport, cfg.Engine.SourceService, logger, registry)

	var medians pricing.MedianSource = staticMedianSource(cfg.Engine)
	if cfg.Engine.MedianSource == config.MedianSourcePostgres {
		medians = repos.PriceHistory
	}

	detector := geo.NewSpoofingDetector(geofenceConfig(cfg.Engine).MaxSpeedKmh, nil)
	services := rest.Services{
		Geofence:      geofence.NewService(geofenceConfig(cfg.Engine), detector, bus, logger, registry),
		Access:        access.NewService(detector, bus, logger, registry),
		HOS:           hos.NewService(repos.ELD, bus, logger, registry),
		Sanctions:     sanctions.NewService(sanctionsConfig(cfg.Engine), passports, nil, logger, registry),
		Conflict:      conflict.NewService(passports, nil, nil, logger, registry),
		Pricing:       pricing.NewService(medians, repos.ManualEntry, bus, logger, registry),
		DefaultRegion: hos.ParseRegion(cfg.Engine.HOSRegion),
	}

	var limiter *rest.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = rest.NewRateLimiter(rest.RateLimiterConfig{
			RPS:        cfg.Server.RateLimitRPS,
			Burst:      cfg.Server.RateLimitBurst,
			IdleTTL:    cfg.Server.RateLimitIdleTTL,
			MaxClients: cfg.Server.RateLimitMaxClients,
			TrustProxy: cfg.Server.TrustProxy,
		})
	}

	router := rest.NewRouter(rest.Config{
		Logger:         logger,
		Registry:       registry,
		PromRegisterer: prometheus.DefaultRegisterer,
		PromGatherer:   prometheus.DefaultGatherer,
		RateLimiter:    limiter,
		HealthChecks:   healthChecks,
	}, services)

	server := rest.NewServer(rest.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	logger.Info("risk engine starting",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
		zap.String("addr", server.Addr()),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("kafka", cfg.Kafka.Enabled),
		zap.String("median_source", cfg.Engine.MedianSource),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if limiter != nil {
		g.Go(func() error {
			limiter.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})
	return g.Wait()
}

func migrateUp(url string, logger *zap.Logger) error {
	m, err := database.NewMigrator(url, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
