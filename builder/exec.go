package builder

import (
	"context"
	"fmt"
	"time"

	contextutil "github.com/study/querydsl-go/internal/context"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
	"github.com/study/querydsl-go/internal/limits"
)

// Each runs a row-returning statement under the query timeout and calls fn
// for every row. Rows are closed before Each returns.
func Each(ctx context.Context, s Session, table, sql string, args []interface{}, fn func(rows driver.Rows) error) error {
	ctx, cancel := contextutil.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.DB().Query(ctx, sql, args...)
	if err != nil {
		logFailure(s, sql, err)
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		if count >= limits.MaxScanRows {
			return fmt.Errorf("%w: maximum %d rows allowed", errors.ErrTooManyRows, limits.MaxScanRows)
		}
		if err := fn(rows); err != nil {
			logFailure(s, sql, err)
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		logFailure(s, sql, err)
		return err
	}

	logExecution(s, table, sql, args, time.Since(start), count)
	return nil
}

// Exec runs a statement that returns no rows under the query timeout
func Exec(ctx context.Context, s Session, sql string, args ...interface{}) (driver.Result, error) {
	ctx, cancel := contextutil.WithQueryTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.DB().Exec(ctx, sql, args...)
	if err != nil {
		logFailure(s, sql, err)
		return nil, errors.MapDriverError(err, errors.OpExec)
	}

	logExecution(s, "", sql, args, time.Since(start), int(result.RowsAffected()))
	return result, nil
}

// ScanEntities runs sql and maps every row through the table of src, passing
// each entity through the session's identity map. The statement must select
// the table's columns in order.
func ScanEntities[T any](ctx context.Context, s Session, src EntitySource[T], sql string, args []interface{}) ([]T, error) {
	proj := entityProjector[T]{path: src.Root()}
	var out []T
	err := Each(ctx, s, proj.table(), sql, args, func(rows driver.Rows) error {
		v, err := proj.scan(s, rows)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, errors.MapDriverError(err, errors.OpNativeQuery)
	}
	return out, nil
}
