package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// pgxQuerier is what *pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxConn implements the statement half of DB and Tx over either querier
type pgxConn struct {
	q pgxQuerier
}

func (c pgxConn) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxResult{tag: tag}, nil
}

func (c pgxConn) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

func (c pgxConn) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return pgxRow{c.q.QueryRow(ctx, query, args...)}
}

// PgxPoolAdapter adapts *pgxpool.Pool to DB
type PgxPoolAdapter struct {
	pgxConn
	pool *pgxpool.Pool

	sqlOnce sync.Once
	sqlDB   *sql.DB
}

// NewPgxPool wraps pool; the adapter owns it from then on
func NewPgxPool(pool *pgxpool.Pool) DB {
	return &PgxPoolAdapter{pgxConn: pgxConn{q: pool}, pool: pool}
}

func (a *PgxPoolAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{pgxConn: pgxConn{q: tx}, tx: tx}, nil
}

// SQLDB returns a database/sql view over the same pool, opened on first use
// for goose
func (a *PgxPoolAdapter) SQLDB() *sql.DB {
	a.sqlOnce.Do(func() {
		a.sqlDB = stdlib.OpenDBFromPool(a.pool)
	})
	return a.sqlDB
}

func (a *PgxPoolAdapter) Close() error {
	var err error
	if a.sqlDB != nil {
		err = a.sqlDB.Close()
	}
	a.pool.Close()
	return err
}

type pgxResult struct {
	tag pgconn.CommandTag
}

func (r pgxResult) RowsAffected() int64 {
	return r.tag.RowsAffected()
}

// LastInsertId is never reported by PostgreSQL; inserts use RETURNING
func (r pgxResult) LastInsertId() (int64, error) {
	return 0, fmt.Errorf("LastInsertId is not supported by pgx, use RETURNING")
}

// pgxRows already satisfies Rows; the wrapper hides the rest of pgx.Rows
type pgxRows struct {
	pgx.Rows
}

type pgxRow struct {
	row pgx.Row
}

// Scan reports pgx.ErrNoRows as sql.ErrNoRows so both drivers share one sentinel
func (r pgxRow) Scan(dest ...interface{}) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}

type pgxTx struct {
	pgxConn
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
