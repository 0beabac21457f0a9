package builder

import (
	"github.com/study/querydsl-go/internal/errors"
)

// Errors returned by queries, for matching with errors.Is
var (
	ErrNoResult             = errors.ErrNoResult
	ErrNonUniqueResult      = errors.ErrNonUniqueResult
	ErrTransientReference   = errors.ErrTransientReference
	ErrClosed               = errors.ErrClosed
	ErrInvalidQuery         = errors.ErrInvalidQuery
	ErrTooManyRows          = errors.ErrTooManyRows
	ErrUniqueConstraint     = errors.ErrUniqueConstraint
	ErrForeignKeyConstraint = errors.ErrForeignKeyConstraint
	ErrNullConstraint       = errors.ErrNullConstraint
	ErrTimeout              = errors.ErrTimeout
)

func IsNoResult(err error) bool {
	return errors.IsNoResult(err)
}

func IsNonUniqueResult(err error) bool {
	return errors.IsNonUniqueResult(err)
}
