package migrations

import (
	"context"
	"database/sql"
	"time"
)

// HealthCheck is the outcome of probing a connection
type HealthCheck struct {
	Status          string
	ResponseTime    time.Duration
	OpenConnections int
	SchemaVersion   int64
	Error           string
}

// CheckHealth pings the database, runs a trivial query and reads the schema version
func (m *Migrator) CheckHealth(ctx context.Context, timeout time.Duration) (*HealthCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	check := &HealthCheck{Status: "unhealthy"}

	err := ping(ctx, m.db)
	check.ResponseTime = time.Since(start)
	check.OpenConnections = m.db.Stats().OpenConnections
	if err != nil {
		check.Error = err.Error()
		return check, err
	}

	version, err := m.Version(ctx)
	if err != nil {
		check.Error = err.Error()
		return check, err
	}
	check.SchemaVersion = version
	check.Status = "healthy"
	return check, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
