package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ProductionMode = os.Getenv("ENV") == "production" || os.Getenv("ENV") == "prod"

type QueryError struct {
	Code    string
	Message string
	cause   error
}

func (e *QueryError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.cause
}

func (e *QueryError) Is(target error) bool {
	if t, ok := target.(*QueryError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrNoResult           = &QueryError{Code: "Q1001", Message: "No result for single-row fetch"}
	ErrNonUniqueResult    = &QueryError{Code: "Q1002", Message: "Query did not return a unique result"}
	ErrTransientReference = &QueryError{Code: "Q1003", Message: "Entity references an unsaved transient instance"}
	ErrClosed             = &QueryError{Code: "Q1004", Message: "Entity manager is closed"}
	ErrInvalidQuery       = &QueryError{Code: "Q1005", Message: "Invalid query"}
	ErrTooManyRows        = &QueryError{Code: "Q1006", Message: "Result set too large"}

	ErrUniqueConstraint     = &QueryError{Code: "Q2002", Message: "Unique constraint violation"}
	ErrForeignKeyConstraint = &QueryError{Code: "Q2003", Message: "Foreign key constraint violation"}
	ErrNullConstraint       = &QueryError{Code: "Q2011", Message: "Not null constraint violation"}
	ErrQueryFailed          = &QueryError{Code: "Q2010", Message: "Query failed"}

	ErrConnectionFailed = &QueryError{Code: "Q3001", Message: "Database not reachable"}
	ErrTimeout          = &QueryError{Code: "Q3008", Message: "Operation timeout"}
)

type OperationType string

const (
	OpFetch       OperationType = "Fetch"
	OpFetchOne    OperationType = "FetchOne"
	OpFetchFirst  OperationType = "FetchFirst"
	OpFetchCount  OperationType = "FetchCount"
	OpFlush       OperationType = "Flush"
	OpFind        OperationType = "Find"
	OpNativeQuery OperationType = "NativeQuery"
	OpExec        OperationType = "Exec"
)

func NewQueryError(code, message string, cause error) *QueryError {
	return &QueryError{Code: code, Message: message, cause: cause}
}

func Wrap(sentinel *QueryError, cause error) *QueryError {
	return &QueryError{Code: sentinel.Code, Message: sentinel.Message, cause: cause}
}

func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoResult)
}

func IsNonUniqueResult(err error) bool {
	return errors.Is(err, ErrNonUniqueResult)
}

func IsUniqueConstraint(err error) bool {
	return errors.Is(err, ErrUniqueConstraint)
}

func IsForeignKeyConstraint(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no rows in result set")
}

func isUniqueViolation(errStr string) bool {
	return strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "duplicate entry") ||
		strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "1062")
}

func isForeignKeyViolation(errStr string) bool {
	return strings.Contains(errStr, "foreign key constraint") ||
		strings.Contains(errStr, "23503") ||
		strings.Contains(errStr, "1452")
}

func isNullViolation(errStr string) bool {
	return strings.Contains(errStr, "not null constraint") ||
		strings.Contains(errStr, "not-null constraint") ||
		strings.Contains(errStr, "23502") ||
		strings.Contains(errStr, "1048")
}

func isTimeout(errStr string) bool {
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isConnectionError(errStr string) bool {
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host")
}

// MapDriverError translates a driver error into the module's taxonomy.
// Errors that already carry a QueryError pass through unchanged.
func MapDriverError(err error, op OperationType) error {
	if err == nil {
		return nil
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}

	if isNoRows(err) {
		switch op {
		case OpFetch:
			return nil
		default:
			return Wrap(ErrNoResult, err)
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case isUniqueViolation(errStr):
		return Wrap(ErrUniqueConstraint, err)
	case isForeignKeyViolation(errStr):
		return Wrap(ErrForeignKeyConstraint, err)
	case isNullViolation(errStr):
		return Wrap(ErrNullConstraint, err)
	case isTimeout(errStr):
		return Wrap(ErrTimeout, err)
	case isConnectionError(errStr):
		return Wrap(ErrConnectionFailed, err)
	}

	return Wrap(ErrQueryFailed, err)
}

// SanitizeError hides SQL details from error messages in production mode.
func SanitizeError(err error) error {
	if err == nil || !ProductionMode {
		return err
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		return &QueryError{Code: qe.Code, Message: qe.Message}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"table", "column", "select", "insert", "where", "syntax", "constraint"} {
		if strings.Contains(msg, pattern) {
			return fmt.Errorf("database operation failed")
		}
	}
	return err
}

func WrapError(err error, genericMsg string) error {
	if err == nil {
		return nil
	}
	if ProductionMode {
		return fmt.Errorf("%s", genericMsg)
	}
	return fmt.Errorf("%s: %w", genericMsg, err)
}

func NewInvalidQueryError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, msg)
}

func NewNoResultError(what string) error {
	return fmt.Errorf("%w: %s", ErrNoResult, what)
}

func NewNonUniqueResultError(what string, rows int) error {
	return fmt.Errorf("%w: %s returned %d rows", ErrNonUniqueResult, what, rows)
}
