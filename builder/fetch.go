package builder

import (
	"context"

	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
)

// QueryResults is one page of results together with the unpaged total
type QueryResults[T any] struct {
	Results []T
	Total   int64
	Offset  int
	Limit   int
}

// IsEmpty reports whether the page holds no rows
func (r *QueryResults[T]) IsEmpty() bool {
	return len(r.Results) == 0
}

// Fetch returns every row
func (q *Query[T]) Fetch(ctx context.Context) ([]T, error) {
	return q.fetch(ctx, q.limit, errors.OpFetch)
}

// FetchOne returns the only row. It fails with ErrNoResult when there is none
// and ErrNonUniqueResult when there are more.
func (q *Query[T]) FetchOne(ctx context.Context) (T, error) {
	var zero T
	limit := 2
	if q.limit > 0 && q.limit < limit {
		limit = q.limit
	}
	results, err := q.fetch(ctx, limit, errors.OpFetchOne)
	if err != nil {
		return zero, err
	}
	switch len(results) {
	case 0:
		return zero, errors.NewNoResultError(q.describe())
	case 1:
		return results[0], nil
	default:
		return zero, errors.NewNonUniqueResultError(q.describe(), len(results))
	}
}

// FetchFirst returns the first row, ErrNoResult when there is none
func (q *Query[T]) FetchFirst(ctx context.Context) (T, error) {
	var zero T
	results, err := q.fetch(ctx, 1, errors.OpFetchFirst)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, errors.NewNoResultError(q.describe())
	}
	return results[0], nil
}

// FetchResults runs a count query and then fetches the requested page.
// The page query is skipped when the count is zero.
func (q *Query[T]) FetchResults(ctx context.Context) (*QueryResults[T], error) {
	total, err := q.FetchCount(ctx)
	if err != nil {
		return nil, err
	}
	res := &QueryResults[T]{Total: total, Offset: q.offset, Limit: q.limit}
	if total == 0 {
		res.Results = []T{}
		return res, nil
	}
	res.Results, err = q.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FetchCount counts the rows the query matches, ignoring offset and limit
func (q *Query[T]) FetchCount(ctx context.Context) (int64, error) {
	if err := q.prepare(ctx); err != nil {
		return 0, err
	}
	sql, args := q.renderCount()

	var count int64
	err := Each(ctx, q.session, q.tableName(), sql, args, func(rows driver.Rows) error {
		return rows.Scan(&count)
	})
	if err != nil {
		return 0, errors.MapDriverError(err, errors.OpFetchCount)
	}
	return count, nil
}

func (q *Query[T]) fetch(ctx context.Context, limit int, op errors.OperationType) ([]T, error) {
	if err := q.prepare(ctx); err != nil {
		return nil, err
	}
	sql, args := q.render(limit)

	results := []T{}
	err := Each(ctx, q.session, q.tableName(), sql, args, func(rows driver.Rows) error {
		v, err := q.proj.scan(q.session, rows)
		if err != nil {
			return err
		}
		results = append(results, v)
		return nil
	})
	if err != nil {
		return nil, errors.MapDriverError(err, op)
	}
	return results, nil
}

// prepare reports construction errors and flushes the session
func (q *Query[T]) prepare(ctx context.Context) error {
	if q.err != nil {
		return q.err
	}
	if len(q.from) == 0 {
		return errors.NewInvalidQueryError("query has no FROM clause")
	}
	return q.session.Flush(ctx)
}

func (q *Query[T]) tableName() string {
	if t := q.proj.table(); t != "" {
		return t
	}
	if len(q.from) > 0 {
		return q.from[0].TableName()
	}
	return ""
}

func (q *Query[T]) describe() string {
	sql, _ := q.ToSQL()
	return sql
}
