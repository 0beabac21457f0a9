// Package migrations holds the schema for team and member as embedded goose
// migrations, one directory per provider.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	contextutil "github.com/study/querydsl-go/internal/context"
	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/logger"
)

//go:embed sql/*/*.sql
var migrations embed.FS

// DefaultTable is goose's own version table name
const DefaultTable = "goose_db_version"

// goose keeps its base FS, dialect and table name in package state
var gooseMu sync.Mutex

// Status describes one migration known to the binary
type Status struct {
	Version int64
	Source  string
	Applied bool
}

// Migrator runs the embedded migrations for one provider
type Migrator struct {
	db       *sql.DB
	provider string
	table    string
}

// New returns a migrator for db. An empty table uses goose's default.
func New(db *sql.DB, provider, table string) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	switch provider {
	case "sqlite", "postgresql", "mysql":
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	return &Migrator{db: db, provider: provider, table: table}, nil
}

func (m *Migrator) dir() string {
	return "sql/" + m.provider
}

// with configures goose for this migrator and runs fn under the package lock
func (m *Migrator) with(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	table := m.table
	if table == "" {
		table = DefaultTable
	}
	goose.SetTableName(table)
	if err := goose.SetDialect(dialect.GetDialect(m.provider).GetGooseDialect()); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return fn()
}

// Up applies all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	ctx, cancel := contextutil.WithMigrationTimeout(ctx)
	defer cancel()

	return m.with(func() error {
		if err := goose.UpContext(ctx, m.db, m.dir()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	ctx, cancel := contextutil.WithMigrationTimeout(ctx)
	defer cancel()

	return m.with(func() error {
		if err := goose.DownContext(ctx, m.db, m.dir()); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return nil
	})
}

// Version returns the current schema version, 0 when nothing is applied
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.with(func() error {
		v, err := goose.GetDBVersionContext(ctx, m.db)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// Status lists every embedded migration and whether it is applied
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	var out []Status
	err := m.with(func() error {
		current, err := goose.GetDBVersionContext(ctx, m.db)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		all, err := goose.CollectMigrations(m.dir(), 0, goose.MaxVersion)
		if err != nil {
			return fmt.Errorf("failed to collect migrations: %w", err)
		}
		for _, mig := range all {
			out = append(out, Status{
				Version: mig.Version,
				Source:  mig.Source,
				Applied: mig.Version <= current,
			})
		}
		return nil
	})
	return out, err
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Info(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Error(format, v...)
}
