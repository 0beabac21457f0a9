package builder

import (
	"github.com/study/querydsl-go/internal/dialect"
)

// OrderSpecifier is one ORDER BY item
type OrderSpecifier struct {
	target Expression
	desc   bool
	nulls  dialect.NullOrdering
}

// NullsFirst sorts NULLs before every other value
func (o OrderSpecifier) NullsFirst() OrderSpecifier {
	o.nulls = dialect.NullsFirst
	return o
}

// NullsLast sorts NULLs after every other value
func (o OrderSpecifier) NullsLast() OrderSpecifier {
	o.nulls = dialect.NullsLast
	return o
}

func (o OrderSpecifier) IsDescending() bool {
	return o.desc
}

func (o OrderSpecifier) appendOrder(r *renderer) {
	text, args := r.capture(o.target)
	r.write(dialect.RenderOrderItem(r.d, text, o.desc, o.nulls))

	// the emulated form repeats the expression, and with it any ? arguments
	if o.nulls != dialect.NullsDefault && !r.d.SupportsNullsOrdering() && len(args) > 0 {
		repeat := append([]interface{}(nil), args...)
		r.args = append(r.args, repeat...)
	}
}
