package dialect

import "fmt"

// PostgreSQLDialect implements the PostgreSQL dialect
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) Name() string {
	return "postgresql"
}

func (d *PostgreSQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, `"`)
}

func (d *PostgreSQLDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

func (d *PostgreSQLDialect) GetPlaceholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgreSQLDialect) GetDriverName() string {
	return "pgx"
}

func (d *PostgreSQLDialect) GetGooseDialect() string {
	return "postgres"
}

func (d *PostgreSQLDialect) GetLimitOffsetSyntax(limit, offset int) string {
	return limitOffset(limit, offset)
}

func (d *PostgreSQLDialect) SupportsNullsOrdering() bool {
	return true
}

func (d *PostgreSQLDialect) SupportsReturning() bool {
	return true
}
