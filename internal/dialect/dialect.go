package dialect

import (
	"strings"
)

// NullOrdering controls where NULL sort keys land in an ORDER BY item
type NullOrdering int

const (
	NullsDefault NullOrdering = iota
	NullsFirst
	NullsLast
)

// Dialect abstracts the differences between PostgreSQL, MySQL and SQLite
// that matter when rendering and executing queries.
type Dialect interface {
	// Name returns the dialect name ("postgresql", "mysql", "sqlite")
	Name() string

	// QuoteIdentifier quotes a table, alias or column name.
	// PostgreSQL/SQLite: "name", MySQL: `name`
	QuoteIdentifier(name string) string

	// QuoteString quotes a string literal
	QuoteString(value string) string

	// GetPlaceholder returns the bind placeholder for the 1-based index.
	// PostgreSQL: $1, $2, MySQL/SQLite: ?
	GetPlaceholder(index int) string

	// GetDriverName returns the database/sql driver name
	GetDriverName() string

	// GetGooseDialect returns the dialect name understood by goose
	GetGooseDialect() string

	// GetLimitOffsetSyntax renders LIMIT/OFFSET. Non-positive values are omitted.
	GetLimitOffsetSyntax(limit, offset int) string

	// SupportsNullsOrdering reports native NULLS FIRST/LAST support
	SupportsNullsOrdering() bool

	// SupportsReturning reports INSERT ... RETURNING support
	SupportsReturning() bool
}

// GetDialect returns the dialect for a provider name
func GetDialect(provider string) Dialect {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres", "pgx":
		return &PostgreSQLDialect{}
	case "mysql", "mariadb":
		return &MySQLDialect{}
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}
	default:
		return &SQLiteDialect{}
	}
}

// DetectProvider detects the provider from a connection URL
func DetectProvider(url string) string {
	url = strings.ToLower(url)

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgresql"
	case strings.HasPrefix(url, "mysql://"):
		return "mysql"
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"), url == ":memory:":
		return "sqlite"
	}

	return "sqlite"
}
