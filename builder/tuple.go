package builder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/study/querydsl-go/internal/dialect"
)

// Tuple is one row of a multi-expression projection
type Tuple struct {
	exprs   []Projection
	values  []interface{}
	dialect dialect.Dialect
}

// Get returns the value selected for e, or the zero value when e was not
// selected. e may be the selected expression itself or an equal one built
// again, such as a second m.Age.Sum().
func Get[V any](t Tuple, e TypedExpression[V]) V {
	if i := t.indexOf(e); i >= 0 {
		if v, ok := t.values[i].(V); ok {
			return v
		}
	}
	var zero V
	return zero
}

func (t Tuple) indexOf(e Expression) int {
	for i, x := range t.exprs {
		if x.node() == e.node() {
			return i
		}
	}
	if t.dialect == nil {
		return -1
	}
	sql, args := renderExpr(t.dialect, e)
	for i, x := range t.exprs {
		xsql, xargs := renderExpr(t.dialect, x)
		if xsql == sql && reflect.DeepEqual(xargs, args) {
			return i
		}
	}
	return -1
}

func renderExpr(d dialect.Dialect, e Expression) (string, []interface{}) {
	r := newRenderer(d)
	e.appendSQL(r)
	return r.String(), r.args
}

func (t Tuple) Size() int {
	return len(t.values)
}

// At returns the i-th selected value
func (t Tuple) At(i int) interface{} {
	return t.values[i]
}

func (t Tuple) String() string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
