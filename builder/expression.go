package builder

import (
	"github.com/study/querydsl-go/internal/dialect"
)

// renderer accumulates SQL text and bind arguments in text order, so
// positional placeholders ($1, $2, ...) always line up with args.
type renderer struct {
	d    dialect.Dialect
	buf  []byte
	args []interface{}
}

func newRenderer(d dialect.Dialect) *renderer {
	return &renderer{d: d, buf: make([]byte, 0, 256)}
}

func (r *renderer) write(s string) {
	r.buf = append(r.buf, s...)
}

func (r *renderer) ident(name string) {
	r.write(r.d.QuoteIdentifier(name))
}

func (r *renderer) column(alias, column string) {
	if alias != "" {
		r.ident(alias)
		r.write(".")
	}
	r.ident(column)
}

func (r *renderer) bind(v interface{}) {
	r.args = append(r.args, v)
	r.write(r.d.GetPlaceholder(len(r.args)))
}

// capture renders e and removes its text from the buffer, returning the text
// and the args it bound. The args stay bound.
func (r *renderer) capture(e Expression) (string, []interface{}) {
	start, nargs := len(r.buf), len(r.args)
	e.appendSQL(r)
	text := string(r.buf[start:])
	r.buf = r.buf[:start]
	return text, r.args[nargs:]
}

func (r *renderer) String() string {
	return string(r.buf)
}

// exprNode is the shared identity of an expression. Copies of a path or
// expression value point at the same node, which is how tuples find values.
type exprNode struct {
	render func(r *renderer)
}

func newNode(render func(r *renderer)) *exprNode {
	return &exprNode{render: render}
}

func (n *exprNode) appendSQL(r *renderer) {
	n.render(r)
}

func (n *exprNode) node() *exprNode {
	return n
}

// Expression is anything that renders into SQL
type Expression interface {
	appendSQL(r *renderer)
	node() *exprNode
}

// Projection is an expression that can be selected and scanned
type Projection interface {
	Expression
	newTarget() interface{}
	anyValue(target interface{}) interface{}
}

// TypedExpression is a projection yielding values of type V
type TypedExpression[V any] interface {
	Projection
	valueOf(target interface{}) V
}

// typed implements scanning for expressions of type V. NULL becomes the zero value.
type typed[V any] struct{}

func (typed[V]) newTarget() interface{} {
	return new(*V)
}

func (typed[V]) valueOf(target interface{}) V {
	if p, ok := target.(**V); ok && *p != nil {
		return **p
	}
	var zero V
	return zero
}

func (t typed[V]) anyValue(target interface{}) interface{} {
	return t.valueOf(target)
}

// Number is the set of Go types a numeric path can carry
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Literal is a constant bound as a parameter
func Literal[V any](v V) ComparableExpression[V] {
	return newComparable[V](func(r *renderer) { r.bind(v) })
}

// Template is raw SQL with ? markers replaced by the given expressions, e.g.
// Template[int]("COALESCE(?, 0)", QMember.Age)
func Template[V any](sql string, args ...Expression) ComparableExpression[V] {
	return newComparable[V](func(r *renderer) {
		i := 0
		for j := 0; j < len(sql); j++ {
			if sql[j] == '?' && i < len(args) {
				args[i].appendSQL(r)
				i++
				continue
			}
			r.buf = append(r.buf, sql[j])
		}
	})
}

func renderList(r *renderer, exprs []Expression) {
	for i, e := range exprs {
		if i > 0 {
			r.write(", ")
		}
		e.appendSQL(r)
	}
}
