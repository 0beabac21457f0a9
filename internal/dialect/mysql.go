package dialect

import "fmt"

// MySQLDialect implements the MySQL dialect
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "`")
}

func (d *MySQLDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

func (d *MySQLDialect) GetPlaceholder(index int) string {
	return "?"
}

func (d *MySQLDialect) GetDriverName() string {
	return "mysql"
}

func (d *MySQLDialect) GetGooseDialect() string {
	return "mysql"
}

func (d *MySQLDialect) GetLimitOffsetSyntax(limit, offset int) string {
	if limit <= 0 && offset > 0 {
		// MySQL has no OFFSET without LIMIT
		return fmt.Sprintf("LIMIT 18446744073709551615 OFFSET %d", offset)
	}
	return limitOffset(limit, offset)
}

func (d *MySQLDialect) SupportsNullsOrdering() bool {
	return false
}

func (d *MySQLDialect) SupportsReturning() bool {
	return false
}
