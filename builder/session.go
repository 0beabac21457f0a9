package builder

import (
	"context"

	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/logger"
	"github.com/study/querydsl-go/internal/query"
)

// DBTX is an alias for driver.DB; transactions are adapted to it
type DBTX = driver.DB

// Session is what queries execute against. The persistence package's
// EntityManager is the usual implementation; DBSession covers plain use.
type Session interface {
	DB() driver.DB
	Dialect() dialect.Dialect
	// Flush writes pending changes before a query runs
	Flush(ctx context.Context) error
	Logger() *logger.Logger
	// Detector may return nil
	Detector() *query.N1Detector
}

// IdentityMap is implemented by sessions that guarantee one instance per row
type IdentityMap interface {
	Lookup(table string, id int64) (interface{}, bool)
	Register(table string, id int64, entity interface{})
}

// DBSession runs queries straight against a connection or transaction
type DBSession struct {
	db       driver.DB
	dialect  dialect.Dialect
	logger   *logger.Logger
	detector *query.N1Detector
}

type SessionOption func(*DBSession)

func WithLogger(l *logger.Logger) SessionOption {
	return func(s *DBSession) { s.logger = l }
}

func WithN1Detector(d *query.N1Detector) SessionOption {
	return func(s *DBSession) { s.detector = d }
}

func NewSession(db DBTX, d dialect.Dialect, opts ...SessionOption) *DBSession {
	s := &DBSession{db: db, dialect: d}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DBSession) DB() driver.DB                   { return s.db }
func (s *DBSession) Dialect() dialect.Dialect        { return s.dialect }
func (s *DBSession) Flush(ctx context.Context) error { return nil }
func (s *DBSession) Detector() *query.N1Detector     { return s.detector }

// Logger falls back to the package default so late configuration is honoured
func (s *DBSession) Logger() *logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.GetDefaultLogger()
}
