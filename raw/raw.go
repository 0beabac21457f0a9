// Package raw runs hand-written SQL with :named parameters through a builder
// session, mapping rows onto entities the same way typed queries do.
package raw

import (
	"context"
	"fmt"
	"strings"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
	"github.com/study/querydsl-go/internal/limits"
)

// Query is a native statement. Parameters are written :name in the SQL and
// bound with SetParameter.
//
// Example:
//
//	m, err := raw.SingleResult(ctx, em.CreateNativeQuery(`
//	    SELECT member_id, username, age, team_id
//	    FROM member
//	    WHERE username = :username
//	`).SetParameter("username", "member1"), entity.QMember)
type Query struct {
	session builder.Session
	sql     string
	params  map[string]interface{}
}

// New returns a query that runs against s
func New(s builder.Session, sql string) *Query {
	return &Query{session: s, sql: sql, params: make(map[string]interface{})}
}

// SetParameter binds value to every :name occurrence
func (q *Query) SetParameter(name string, value interface{}) *Query {
	q.params[strings.TrimPrefix(name, ":")] = value
	return q
}

// SQL returns the statement as written
func (q *Query) SQL() string {
	return q.sql
}

// Compile rewrites :name parameters to the session dialect's placeholders and
// returns the args in placeholder order. Text inside quotes, comments and ::
// casts is left alone.
func (q *Query) Compile() (string, []interface{}, error) {
	if len(q.sql) > limits.MaxNativeQuerySize {
		return "", nil, errors.NewInvalidQueryError(
			fmt.Sprintf("native query too large: maximum %d bytes allowed", limits.MaxNativeQuerySize))
	}

	d := q.session.Dialect()
	backslash := d.Name() == "mysql"
	var (
		b    strings.Builder
		args []interface{}
	)
	b.Grow(len(q.sql))

	src := q.sql
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(src, i, c, backslash && c != '`')
			b.WriteString(src[i:end])
			i = end - 1
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				end = len(src)
			} else {
				end += i + 4
			}
			b.WriteString(src[i:end])
			i = end - 1
		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			b.WriteString(src[i : i+end])
			i += end - 1
		case c == ':' && i+1 < len(src) && src[i+1] == ':':
			b.WriteString("::")
			i++
		case c == ':' && i+1 < len(src) && isNameStart(src[i+1]):
			j := i + 1
			for j < len(src) && isNamePart(src[j]) {
				j++
			}
			name := src[i+1 : j]
			value, ok := q.params[name]
			if !ok {
				return "", nil, errors.NewInvalidQueryError(fmt.Sprintf("parameter :%s is not set", name))
			}
			args = append(args, value)
			b.WriteString(d.GetPlaceholder(len(args)))
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), args, nil
}

// skipQuoted returns the index just past the quoted section starting at i.
// A doubled quote character inside is an escaped quote, and so is a
// backslash sequence when backslash is set (MySQL strings).
func skipQuoted(s string, i int, quote byte, backslash bool) int {
	for j := i + 1; j < len(s); j++ {
		if backslash && s[j] == '\\' {
			j++
			continue
		}
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// ResultList maps every row onto src's entity type. The statement must select
// src's columns in table order.
func ResultList[T any](ctx context.Context, q *Query, src builder.EntitySource[T]) ([]T, error) {
	if err := q.session.Flush(ctx); err != nil {
		return nil, err
	}
	sql, args, err := q.Compile()
	if err != nil {
		return nil, err
	}
	results, err := builder.ScanEntities(ctx, q.session, src, sql, args)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// SingleResult returns the only row, failing with ErrNoResult or
// ErrNonUniqueResult otherwise
func SingleResult[T any](ctx context.Context, q *Query, src builder.EntitySource[T]) (T, error) {
	var zero T
	results, err := ResultList(ctx, q, src)
	if err != nil {
		return zero, err
	}
	switch len(results) {
	case 0:
		return zero, errors.NewNoResultError(q.sql)
	case 1:
		return results[0], nil
	default:
		return zero, errors.NewNonUniqueResultError(q.sql, len(results))
	}
}

// Rows runs the statement and calls fn for every row, for projections that
// are not entities
func (q *Query) Rows(ctx context.Context, fn func(rows driver.Rows) error) error {
	if err := q.session.Flush(ctx); err != nil {
		return err
	}
	sql, args, err := q.Compile()
	if err != nil {
		return err
	}
	if err := builder.Each(ctx, q.session, "", sql, args, fn); err != nil {
		return errors.MapDriverError(err, errors.OpNativeQuery)
	}
	return nil
}

// Exec runs a statement that returns no rows and reports the rows affected
func (q *Query) Exec(ctx context.Context) (int64, error) {
	if err := q.session.Flush(ctx); err != nil {
		return 0, err
	}
	sql, args, err := q.Compile()
	if err != nil {
		return 0, err
	}
	result, err := builder.Exec(ctx, q.session, sql, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
