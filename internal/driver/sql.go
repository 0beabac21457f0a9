package driver

import (
	"context"
	"database/sql"
)

// SQLDBAdapter adapts *sql.DB to the driver.DB interface.
// Used for SQLite (mattn/go-sqlite3), MySQL (go-sql-driver/mysql) and
// any other database/sql driver.
type SQLDBAdapter struct {
	db *sql.DB
}

// NewSQLDB creates a new adapter from *sql.DB
func NewSQLDB(db *sql.DB) DB {
	return &SQLDBAdapter{db: db}
}

func (a *SQLDBAdapter) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: result}, nil
}

func (a *SQLDBAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLRows{rows: rows}, nil
}

func (a *SQLDBAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

func (a *SQLDBAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &SQLTx{tx: tx}, nil
}

func (a *SQLDBAdapter) SQLDB() *sql.DB {
	return a.db
}

func (a *SQLDBAdapter) Close() error {
	return a.db.Close()
}

// SQLResult wraps sql.Result
type SQLResult struct {
	result sql.Result
}

func (r *SQLResult) RowsAffected() int64 {
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func (r *SQLResult) LastInsertId() (int64, error) {
	return r.result.LastInsertId()
}

// SQLRows wraps *sql.Rows
type SQLRows struct {
	rows *sql.Rows
}

func (r *SQLRows) Close() {
	_ = r.rows.Close()
}

func (r *SQLRows) Err() error {
	return r.rows.Err()
}

func (r *SQLRows) Next() bool {
	return r.rows.Next()
}

func (r *SQLRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

// SQLTx wraps *sql.Tx
type SQLTx struct {
	tx *sql.Tx
}

// Commit ignores ctx; database/sql binds the transaction to the context given to BeginTx
func (t *SQLTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *SQLTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

func (t *SQLTx) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: result}, nil
}

func (t *SQLTx) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLRows{rows: rows}, nil
}

func (t *SQLTx) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}
