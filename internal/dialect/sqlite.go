package dialect

import "fmt"

// SQLiteDialect implements the SQLite dialect
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, `"`)
}

func (d *SQLiteDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

func (d *SQLiteDialect) GetPlaceholder(index int) string {
	return "?"
}

func (d *SQLiteDialect) GetDriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) GetGooseDialect() string {
	return "sqlite3"
}

func (d *SQLiteDialect) GetLimitOffsetSyntax(limit, offset int) string {
	if limit <= 0 && offset > 0 {
		return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
	}
	return limitOffset(limit, offset)
}

// NULLS FIRST/LAST since SQLite 3.30
func (d *SQLiteDialect) SupportsNullsOrdering() bool {
	return true
}

// RETURNING since SQLite 3.35
func (d *SQLiteDialect) SupportsReturning() bool {
	return true
}
