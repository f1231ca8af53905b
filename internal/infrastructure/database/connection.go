package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
)

// ConnectionPool wraps the primary pgx pool and reports its size to the metrics registry
type ConnectionPool struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	metrics *metrics.Registry

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConnectionPool connects and pings the database
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, registry *metrics.Registry) (*ConnectionPool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	p := &ConnectionPool{
		logger:  logger.Named("database"),
		metrics: registry,
		stop:    make(chan struct{}),
	}
	p.configurePgxPool(poolConfig, cfg)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p.pool, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := p.pool.Ping(connectCtx); err != nil {
		p.pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p.wg.Add(1)
	go p.metricsCollectionRoutine()

	p.logger.Info("database connection pool initialized",
		zap.Int32("max_connections", poolConfig.MaxConns),
		zap.Int32("min_connections", poolConfig.MinConns))
	return p, nil
}

func (p *ConnectionPool) configurePgxPool(pc *pgxpool.Config, cfg config.DatabaseConfig) {
	pc.MaxConns = 25
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = 2
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = 30 * time.Minute
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	pc.MaxConnIdleTime = 10 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	pc.ConnConfig.ConnectTimeout = 5 * time.Second
	pc.ConnConfig.RuntimeParams["application_name"] = "scm_risk_engine"
	pc.ConnConfig.RuntimeParams["timezone"] = "UTC"
	pc.ConnConfig.RuntimeParams["statement_timeout"] = "30s"

	pc.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		p.logger.Debug("establishing database connection",
			zap.String("host", cc.Host),
			zap.Uint16("port", cc.Port))
		return nil
	}
}

// Pool returns the underlying pgx pool
func (p *ConnectionPool) Pool() *pgxpool.Pool {
	return p.pool
}

// HealthCheck pings the database within a short deadline
func (p *ConnectionPool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *ConnectionPool) metricsCollectionRoutine() {
	defer p.wg.Done()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		p.metrics.SetDBPoolSize(int64(p.pool.Stat().TotalConns()))
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}
	}
}

// Close stops background collection and closes every connection
func (p *ConnectionPool) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.wg.Wait()
		p.pool.Close()
		p.logger.Info("database connection pool closed")
	})
}
