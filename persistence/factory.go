// Package persistence is the unit-of-work layer: an EntityManager tracks the
// entities of one transaction, writes pending inserts on flush and hands out
// one instance per row.
package persistence

import (
	"context"
	"fmt"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/internal/config"
	contextutil "github.com/study/querydsl-go/internal/context"
	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/logger"
	"github.com/study/querydsl-go/internal/query"
)

// EntityManagerFactory owns the connection pool and creates EntityManagers.
// It is safe for concurrent use; the managers it creates are not.
type EntityManagerFactory struct {
	db       driver.DB
	dialect  dialect.Dialect
	provider string
	logger   *logger.Logger
	detector *query.N1Detector
}

type Option func(*EntityManagerFactory)

// WithLogger sets the logger of every manager; the package default otherwise
func WithLogger(l *logger.Logger) Option {
	return func(f *EntityManagerFactory) { f.logger = l }
}

// WithN1Detector records every SELECT issued by the factory's managers
func WithN1Detector(d *query.N1Detector) Option {
	return func(f *EntityManagerFactory) { f.detector = d }
}

func NewEntityManagerFactory(db driver.DB, d dialect.Dialect, opts ...Option) *EntityManagerFactory {
	f := &EntityManagerFactory{db: db, dialect: d, provider: d.Name()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open applies cfg's timeouts and log levels, connects to its datasource and
// returns a factory for it. opts are applied after the ones cfg implies.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*EntityManagerFactory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	contextutil.Configure(cfg.ContextTimeouts())
	builder.SetLogLevels(cfg.Log)
	builder.SetSlowQueryThreshold(cfg.Timeouts.SlowQuery)

	db, provider, err := driver.Open(ctx, cfg.GetDatabaseURL(), cfg.DriverPool())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.GetProvider(), err)
	}
	if p := cfg.GetProvider(); p != "" && p != provider {
		db.Close()
		return nil, fmt.Errorf("datasource provider %q does not match url (%s)", p, provider)
	}

	var base []Option
	if n1 := cfg.N1Detection; n1 != nil && n1.Enabled {
		base = append(base, WithN1Detector(query.NewN1Detector(n1.Threshold, n1.Window)))
	}
	return NewEntityManagerFactory(db, dialect.GetDialect(provider), append(base, opts...)...), nil
}

// CreateEntityManager begins a transaction and returns a manager bound to it.
// The transaction lives as long as ctx; end it with Commit, Rollback or Close.
func (f *EntityManagerFactory) CreateEntityManager(ctx context.Context) (*EntityManager, error) {
	tx, err := builder.BeginTransaction(ctx, f.db)
	if err != nil {
		return nil, err
	}
	return newEntityManager(f, tx), nil
}

// DB is the underlying pool, for migrations and plain statements
func (f *EntityManagerFactory) DB() driver.DB {
	return f.db
}

func (f *EntityManagerFactory) Dialect() dialect.Dialect {
	return f.dialect
}

func (f *EntityManagerFactory) Provider() string {
	return f.provider
}

// Detector may return nil
func (f *EntityManagerFactory) Detector() *query.N1Detector {
	return f.detector
}

// Close closes the pool
func (f *EntityManagerFactory) Close() error {
	return f.db.Close()
}
