package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"froid-storefront/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	applicationName = "froid-storefront"

	// Cart snapshots are single-row reads and upserts on the request
	// path; anything slower than this fails the request instead of
	// holding a connection.
	statementTimeout = 5 * time.Second

	// Cart traffic is bursty, so idle connections above MinConns are
	// returned quickly.
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

// NewPool creates the connection pool used by the postgres cart storage.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := newPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "database").Logger()
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Str("application_name", applicationName).
		Int32("max_connections", poolConfig.MaxConns).
		Int32("min_connections", poolConfig.MinConns).
		Dur("statement_timeout", statementTimeout).
		Dur("max_conn_lifetime", poolConfig.MaxConnLifetime).
		Msg("opening cart storage pool")

	start := time.Now()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int32("open_connections", pool.Stat().TotalConns()).
		Msg("cart storage pool ready")

	return pool, nil
}

func newPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(min(cfg.MinConnections, cfg.MaxConnections))
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnLifetimeJitter = poolConfig.MaxConnLifetime / 10
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	params["statement_timeout"] = strconv.FormatInt(statementTimeout.Milliseconds(), 10)

	return poolConfig, nil
}
