package driver

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig configures the connection pool.
// For pgx it maps onto pgxpool.Config; for database/sql onto SetMaxOpenConns and friends.
type PoolConfig struct {
	MaxConns          int32         // Maximum number of open connections
	MinConns          int32         // Minimum idle connections kept by pgx
	MaxConnLifetime   time.Duration // Maximum lifetime of a connection
	MaxConnIdleTime   time.Duration // Maximum idle time of a connection
	HealthCheckPeriod time.Duration // pgx health check period
}

// DefaultPoolConfig returns the default pool settings
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxConns:          10,
		MinConns:          1,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

// ConfigurePgxPool applies poolConfig onto a parsed pgxpool config
func ConfigurePgxPool(config *pgxpool.Config, poolConfig *PoolConfig) {
	if poolConfig == nil {
		poolConfig = DefaultPoolConfig()
	}

	if poolConfig.MaxConns > 0 {
		config.MaxConns = poolConfig.MaxConns
	}
	if poolConfig.MinConns > 0 {
		config.MinConns = poolConfig.MinConns
	}
	if poolConfig.MaxConnLifetime > 0 {
		config.MaxConnLifetime = poolConfig.MaxConnLifetime
	}
	if poolConfig.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = poolConfig.MaxConnIdleTime
	}
	if poolConfig.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = poolConfig.HealthCheckPeriod
	}
}

// NewPgxPoolWithConfig creates a pgx pool with custom settings
func NewPgxPoolWithConfig(ctx context.Context, databaseURL string, poolConfig *PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	ConfigurePgxPool(config, poolConfig)

	return pgxpool.NewWithConfig(ctx, config)
}
