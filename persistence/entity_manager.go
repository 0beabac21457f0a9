package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
	"github.com/study/querydsl-go/internal/logger"
	"github.com/study/querydsl-go/internal/query"
	"github.com/study/querydsl-go/raw"
)

// Persistable is an entity the EntityManager can insert. InsertValues is
// called at flush time, after everything persisted before it has its id.
type Persistable interface {
	TableName() string
	IDColumn() string
	InsertValues() (columns []string, values []interface{}, err error)
	// ID is zero until the entity is flushed or loaded
	ID() int64
	// Assign stores the generated id and the session that manages the entity
	Assign(id int64, s builder.Session)
}

// EntityManager is a unit of work over one transaction. It implements
// builder.Session, so queries built against it see its pending inserts, and
// builder.IdentityMap, so they return its managed instances.
//
// An EntityManager is not safe for concurrent use.
type EntityManager struct {
	id       string
	factory  *EntityManagerFactory
	tx       *builder.Transaction
	db       driver.DB
	identity *IdentityMap
	pending  []Persistable
	closed   bool
}

func newEntityManager(f *EntityManagerFactory, tx *builder.Transaction) *EntityManager {
	em := &EntityManager{
		id:       uuid.NewString(),
		factory:  f,
		tx:       tx,
		db:       tx.DB(),
		identity: NewIdentityMap(),
	}
	em.Logger().Info("entity manager %s: transaction started", em.id)
	return em
}

// SessionID identifies the manager in log lines
func (em *EntityManager) SessionID() string {
	return em.id
}

func (em *EntityManager) DB() driver.DB {
	return em.db
}

func (em *EntityManager) Dialect() dialect.Dialect {
	return em.factory.dialect
}

func (em *EntityManager) Logger() *logger.Logger {
	if em.factory.logger != nil {
		return em.factory.logger
	}
	return logger.GetDefaultLogger()
}

func (em *EntityManager) Detector() *query.N1Detector {
	return em.factory.detector
}

// Lookup and Register implement builder.IdentityMap

func (em *EntityManager) Lookup(table string, id int64) (interface{}, bool) {
	return em.identity.Get(table, id)
}

func (em *EntityManager) Register(table string, id int64, entity interface{}) {
	em.identity.Put(table, id, entity)
}

// Persist queues entity for insertion on the next flush. Entities that
// already have an id, or are already queued, are left alone.
func (em *EntityManager) Persist(entity Persistable) error {
	if em.closed {
		return errors.ErrClosed
	}
	if entity.ID() != 0 {
		return nil
	}
	for _, p := range em.pending {
		if p == entity {
			return nil
		}
	}
	em.pending = append(em.pending, entity)
	return nil
}

// Flush inserts the queued entities in persist order inside the transaction
// and registers them in the identity map. Entities flushed before a failure
// stay flushed; the failing one and those after it stay queued.
func (em *EntityManager) Flush(ctx context.Context) error {
	if em.closed {
		return errors.ErrClosed
	}
	flushed := 0
	for len(em.pending) > 0 {
		entity := em.pending[0]
		id, err := em.insert(ctx, entity)
		if err != nil {
			return err
		}
		entity.Assign(id, em)
		em.identity.Put(entity.TableName(), id, entity)
		em.pending = em.pending[1:]
		flushed++
	}
	if flushed > 0 {
		em.Logger().Info("entity manager %s: flushed %d entities", em.id, flushed)
	}
	return nil
}

func (em *EntityManager) insert(ctx context.Context, entity Persistable) (int64, error) {
	columns, values, err := entity.InsertValues()
	if err != nil {
		return 0, err
	}

	d := em.Dialect()
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteIdentifier(entity.TableName()))
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdentifier(col))
	}
	b.WriteString(") VALUES (")
	for i := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.GetPlaceholder(i + 1))
	}
	b.WriteString(")")

	if d.SupportsReturning() {
		b.WriteString(" RETURNING ")
		b.WriteString(d.QuoteIdentifier(entity.IDColumn()))

		var id int64
		err := builder.Each(ctx, em, entity.TableName(), b.String(), values, func(rows driver.Rows) error {
			return rows.Scan(&id)
		})
		if err != nil {
			return 0, errors.MapDriverError(err, errors.OpFlush)
		}
		return id, nil
	}

	result, err := builder.Exec(ctx, em, b.String(), values...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id of %s: %w", entity.TableName(), err)
	}
	return id, nil
}

// Clear detaches every managed entity and drops queued inserts. Later reads
// load fresh instances.
func (em *EntityManager) Clear() {
	em.identity.Clear()
	em.pending = nil
}

// Contains reports whether entity is managed by this manager
func (em *EntityManager) Contains(entity Persistable) bool {
	if entity.ID() == 0 {
		for _, p := range em.pending {
			if p == entity {
				return true
			}
		}
		return false
	}
	existing, ok := em.identity.Get(entity.TableName(), entity.ID())
	return ok && existing == entity
}

// CreateNativeQuery returns a SQL query with :named parameters that runs in
// this manager's transaction
func (em *EntityManager) CreateNativeQuery(sql string) *raw.Query {
	return raw.New(em, sql)
}

// Commit flushes and commits. The manager is closed afterwards, also on failure.
func (em *EntityManager) Commit(ctx context.Context) error {
	if em.closed {
		return errors.ErrClosed
	}
	if err := em.Flush(ctx); err != nil {
		em.closed = true
		_ = em.tx.Rollback(ctx)
		return err
	}
	em.closed = true
	if err := em.tx.Commit(ctx); err != nil {
		return errors.WrapError(err, "failed to commit transaction")
	}
	em.Logger().Info("entity manager %s: committed", em.id)
	return nil
}

// Rollback discards the transaction and closes the manager
func (em *EntityManager) Rollback(ctx context.Context) error {
	if em.closed {
		return errors.ErrClosed
	}
	em.closed = true
	em.pending = nil
	if err := em.tx.Rollback(ctx); err != nil {
		return errors.WrapError(err, "failed to roll back transaction")
	}
	em.Logger().Info("entity manager %s: rolled back", em.id)
	return nil
}

// Close rolls back unless the manager was already committed or rolled back
func (em *EntityManager) Close(ctx context.Context) error {
	if em.closed {
		return nil
	}
	return em.Rollback(ctx)
}

func (em *EntityManager) IsOpen() bool {
	return !em.closed
}

// Find returns the entity of src with the given id: the managed instance when
// there is one, otherwise the row loaded from the database. It fails with
// ErrNoResult when no row has that id.
func Find[T any](ctx context.Context, em *EntityManager, src builder.EntitySource[T], id int64) (T, error) {
	if em.closed {
		var zero T
		return zero, errors.ErrClosed
	}
	return builder.FindByID(ctx, em, src, id)
}
