package builder

import (
	"fmt"

	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/errors"
	"github.com/study/querydsl-go/internal/limits"
)

// Query is a typed SELECT. Clause methods mutate and return the receiver so
// calls chain:
//
//	members, err := builder.SelectFrom(em, entity.QMember).
//		Where(entity.QMember.Age.Between(10, 30)).
//		OrderBy(entity.QMember.Age.Desc()).
//		Fetch(ctx)
type Query[T any] struct {
	session  Session
	proj     projector[T]
	from     []Source
	joins    []join
	where    []*Predicate
	groupBy  []Expression
	having   []*Predicate
	orderBy  []OrderSpecifier
	offset   int
	limit    int
	distinct bool
	err      error
}

type join struct {
	kind   string
	target Source
	on     *Predicate
}

// projector renders the select list and turns a row into a T
type projector[T any] interface {
	appendColumns(r *renderer)
	scan(s Session, rows driver.Rows) (T, error)
	table() string
}

// SelectFrom selects whole entities of src, which is also the FROM clause
func SelectFrom[T any](s Session, src EntitySource[T]) *Query[T] {
	q := &Query[T]{session: s, proj: entityProjector[T]{path: src.Root()}}
	q.from = []Source{src}
	return q
}

// Select projects a single expression; add the FROM clause with From
func Select[V any](s Session, e TypedExpression[V]) *Query[V] {
	return &Query[V]{session: s, proj: exprProjector[V]{expr: e}}
}

// SelectTuple projects several expressions; read values back with Get
func SelectTuple(s Session, exprs ...Projection) *Query[Tuple] {
	q := &Query[Tuple]{session: s, proj: tupleProjector{exprs: exprs}}
	if len(exprs) > limits.MaxSelectFields {
		q.fail(fmt.Sprintf("too many select expressions: maximum %d allowed", limits.MaxSelectFields))
	}
	return q
}

func (q *Query[T]) fail(msg string) {
	if q.err == nil {
		q.err = errors.NewInvalidQueryError(msg)
	}
}

func (q *Query[T]) From(sources ...Source) *Query[T] {
	q.from = append(q.from, sources...)
	return q
}

// Join is an inner join along a many-to-one relation onto target
func (q *Query[T]) Join(rel RelationPath, target Source) *Query[T] {
	return q.joinRelation("INNER", rel, target)
}

func (q *Query[T]) InnerJoin(rel RelationPath, target Source) *Query[T] {
	return q.joinRelation("INNER", rel, target)
}

func (q *Query[T]) LeftJoin(rel RelationPath, target Source) *Query[T] {
	return q.joinRelation("LEFT", rel, target)
}

// JoinOn is an inner join with an explicit condition
func (q *Query[T]) JoinOn(target Source, on *Predicate) *Query[T] {
	return q.addJoin("INNER", target, on)
}

func (q *Query[T]) LeftJoinOn(target Source, on *Predicate) *Query[T] {
	return q.addJoin("LEFT", target, on)
}

func (q *Query[T]) joinRelation(kind string, rel RelationPath, target Source) *Query[T] {
	on, err := rel.on(target)
	if err != nil {
		q.fail(err.Error())
		return q
	}
	return q.addJoin(kind, target, on)
}

func (q *Query[T]) addJoin(kind string, target Source, on *Predicate) *Query[T] {
	if len(q.joins) >= limits.MaxJoins {
		q.fail(fmt.Sprintf("too many joins: maximum %d allowed", limits.MaxJoins))
		return q
	}
	if on == nil {
		q.fail("join on " + target.TableName() + " has no condition")
		return q
	}
	q.joins = append(q.joins, join{kind: kind, target: target, on: on})
	return q
}

// Where adds conditions joined with AND; nil predicates are ignored
func (q *Query[T]) Where(preds ...*Predicate) *Query[T] {
	q.where = append(q.where, compact(preds)...)
	if len(q.where) > limits.MaxQueryConditions {
		q.fail(fmt.Sprintf("too many conditions: maximum %d allowed", limits.MaxQueryConditions))
	}
	return q
}

func (q *Query[T]) GroupBy(exprs ...Expression) *Query[T] {
	q.groupBy = append(q.groupBy, exprs...)
	if len(q.groupBy) > limits.MaxGroupByFields {
		q.fail(fmt.Sprintf("too many group by expressions: maximum %d allowed", limits.MaxGroupByFields))
	}
	return q
}

func (q *Query[T]) Having(preds ...*Predicate) *Query[T] {
	q.having = append(q.having, compact(preds)...)
	return q
}

func (q *Query[T]) OrderBy(specs ...OrderSpecifier) *Query[T] {
	q.orderBy = append(q.orderBy, specs...)
	if len(q.orderBy) > limits.MaxOrderByFields {
		q.fail(fmt.Sprintf("too many order by expressions: maximum %d allowed", limits.MaxOrderByFields))
	}
	return q
}

// Offset skips n rows; zero-based
func (q *Query[T]) Offset(n int) *Query[T] {
	if n < 0 {
		q.fail("offset must not be negative")
		return q
	}
	q.offset = n
	return q
}

// Limit caps the result at n rows; zero means no limit
func (q *Query[T]) Limit(n int) *Query[T] {
	if n < 0 {
		q.fail("limit must not be negative")
		return q
	}
	q.limit = n
	return q
}

func (q *Query[T]) Distinct() *Query[T] {
	q.distinct = true
	return q
}

// ToSQL renders the statement with the session's dialect
func (q *Query[T]) ToSQL() (string, []interface{}) {
	return q.render(q.limit)
}

func (q *Query[T]) render(limit int) (string, []interface{}) {
	r := newRenderer(q.session.Dialect())
	r.write("SELECT ")
	if q.distinct {
		r.write("DISTINCT ")
	}
	q.proj.appendColumns(r)
	q.appendBody(r)

	if len(q.orderBy) > 0 {
		r.write(" ORDER BY ")
		for i, o := range q.orderBy {
			if i > 0 {
				r.write(", ")
			}
			o.appendOrder(r)
		}
	}
	if lo := r.d.GetLimitOffsetSyntax(limit, q.offset); lo != "" {
		r.write(" " + lo)
	}
	return r.String(), r.args
}

// appendBody renders FROM through HAVING
func (q *Query[T]) appendBody(r *renderer) {
	if len(q.from) > 0 {
		r.write(" FROM ")
		for i, src := range q.from {
			if i > 0 {
				r.write(", ")
			}
			appendSource(r, src)
		}
	}
	for _, j := range q.joins {
		r.write(" " + j.kind + " JOIN ")
		appendSource(r, j.target)
		r.write(" ON ")
		j.on.appendSQL(r)
	}
	if where := AllOf(q.where...); where != nil {
		r.write(" WHERE ")
		where.appendSQL(r)
	}
	if len(q.groupBy) > 0 {
		r.write(" GROUP BY ")
		renderList(r, q.groupBy)
	}
	if having := AllOf(q.having...); having != nil {
		r.write(" HAVING ")
		having.appendSQL(r)
	}
}

// renderCount counts the rows the query would return without offset or limit.
// Grouped and distinct queries are counted through a derived table.
func (q *Query[T]) renderCount() (string, []interface{}) {
	r := newRenderer(q.session.Dialect())
	switch {
	case len(q.groupBy) > 0:
		r.write("SELECT COUNT(*) FROM (SELECT ")
		renderList(r, q.groupBy)
		q.appendBody(r)
		r.write(") ")
		r.ident("grouped")
	case q.distinct:
		r.write("SELECT COUNT(*) FROM (SELECT DISTINCT ")
		q.proj.appendColumns(r)
		q.appendBody(r)
		r.write(") ")
		r.ident("distinct_rows")
	default:
		r.write("SELECT COUNT(*)")
		q.appendBody(r)
	}
	return r.String(), r.args
}

func appendSource(r *renderer, src Source) {
	r.ident(src.TableName())
	r.write(" AS ")
	r.ident(src.Alias())
}

type entityProjector[T any] struct {
	path *EntityPath[T]
}

func (p entityProjector[T]) appendColumns(r *renderer) {
	for i, col := range p.path.table.Columns {
		if i > 0 {
			r.write(", ")
		}
		r.column(p.path.alias, col)
	}
}

func (p entityProjector[T]) table() string {
	return p.path.table.Name
}

// scan maps the row and returns the instance already managed for that key, if any
func (p entityProjector[T]) scan(s Session, rows driver.Rows) (T, error) {
	t := p.path.table
	v, err := t.Scan(s, rows.Scan)
	if err != nil {
		return v, err
	}
	im, ok := s.(IdentityMap)
	if !ok || t.ID == nil {
		return v, nil
	}
	id := t.ID(v)
	if existing, found := im.Lookup(t.Name, id); found {
		if e, ok := existing.(T); ok {
			return e, nil
		}
	}
	im.Register(t.Name, id, v)
	return v, nil
}

type exprProjector[V any] struct {
	expr TypedExpression[V]
}

func (p exprProjector[V]) appendColumns(r *renderer) {
	p.expr.appendSQL(r)
}

func (p exprProjector[V]) table() string {
	return ""
}

func (p exprProjector[V]) scan(_ Session, rows driver.Rows) (V, error) {
	target := p.expr.newTarget()
	if err := rows.Scan(target); err != nil {
		var zero V
		return zero, err
	}
	return p.expr.valueOf(target), nil
}

type tupleProjector struct {
	exprs []Projection
}

func (p tupleProjector) appendColumns(r *renderer) {
	for i, e := range p.exprs {
		if i > 0 {
			r.write(", ")
		}
		e.appendSQL(r)
	}
}

func (p tupleProjector) table() string {
	return ""
}

func (p tupleProjector) scan(s Session, rows driver.Rows) (Tuple, error) {
	targets := make([]interface{}, len(p.exprs))
	for i, e := range p.exprs {
		targets[i] = e.newTarget()
	}
	if err := rows.Scan(targets...); err != nil {
		return Tuple{}, err
	}
	values := make([]interface{}, len(p.exprs))
	for i, e := range p.exprs {
		values[i] = e.anyValue(targets[i])
	}
	return Tuple{exprs: p.exprs, values: values, dialect: s.Dialect()}, nil
}
