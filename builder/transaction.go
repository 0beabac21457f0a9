package builder

import (
	"context"
	"database/sql"
	"fmt"

	contextutil "github.com/study/querydsl-go/internal/context"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
)

var errNestedTransaction = fmt.Errorf("cannot begin a transaction within a transaction")

// Transaction is an open database transaction. It also satisfies driver.DB,
// so sessions and nested helpers can run statements through it.
type Transaction struct {
	driver.Tx
}

// TransactionFunc is a function that executes within a transaction
type TransactionFunc func(*Transaction) error

// BeginTransaction starts a transaction. Its lifetime follows ctx, so callers
// bound it with a deadline on ctx rather than one released after Begin.
func BeginTransaction(ctx context.Context, db DBTX) (*Transaction, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, errors.WrapError(err, "failed to begin transaction")
	}
	return &Transaction{Tx: tx}, nil
}

// DB exposes the transaction as a driver.DB
func (t *Transaction) DB() driver.DB {
	return t
}

func (t *Transaction) Begin(ctx context.Context) (driver.Tx, error) {
	return nil, errNestedTransaction
}

// SQLDB is nil; migrations never run inside a transaction
func (t *Transaction) SQLDB() *sql.DB {
	return nil
}

// Close is a no-op; the transaction ends with Commit or Rollback
func (t *Transaction) Close() error {
	return nil
}

// Session runs queries inside the transaction with the settings of s
func (t *Transaction) Session(s Session) *DBSession {
	return NewSession(t, s.Dialect(), WithLogger(s.Logger()), WithN1Detector(s.Detector()))
}

// ExecuteTransaction runs fn inside a transaction bounded by the transaction
// timeout. It commits when fn returns nil and rolls back on error or panic.
func ExecuteTransaction(ctx context.Context, db DBTX, fn TransactionFunc) error {
	ctx, cancel := contextutil.WithTransactionTimeout(ctx)
	defer cancel()

	tx, err := BeginTransaction(ctx, db)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.WrapError(err, "failed to commit transaction")
	}
	return nil
}

// ExecuteSequentialTransactions runs operations in order inside one transaction
func ExecuteSequentialTransactions(ctx context.Context, db DBTX, operations []TransactionFunc) error {
	return ExecuteTransaction(ctx, db, func(tx *Transaction) error {
		for _, op := range operations {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
