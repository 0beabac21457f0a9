package dialect

import (
	"fmt"
	"strings"
)

func quoteWith(name string, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

func quoteLiteral(value string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(value, "'", "''"))
}

// RenderOrderItem renders one ORDER BY item. Dialects without NULLS FIRST/LAST
// get an extra "expr IS NULL" key in front.
func RenderOrderItem(d Dialect, expr string, desc bool, nulls NullOrdering) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	switch {
	case nulls == NullsDefault:
		return expr + " " + dir
	case d.SupportsNullsOrdering():
		if nulls == NullsFirst {
			return expr + " " + dir + " NULLS FIRST"
		}
		return expr + " " + dir + " NULLS LAST"
	case nulls == NullsFirst:
		return fmt.Sprintf("%s IS NULL DESC, %s %s", expr, expr, dir)
	default:
		return fmt.Sprintf("%s IS NULL ASC, %s %s", expr, expr, dir)
	}
}

func limitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("OFFSET %d", offset)
	}
	return ""
}
