package builder

import (
	"strings"
)

// ComparableExpression supports equality, ordering and range predicates
type ComparableExpression[V any] struct {
	*exprNode
	typed[V]
}

func newComparable[V any](render func(r *renderer)) ComparableExpression[V] {
	return ComparableExpression[V]{exprNode: newNode(render)}
}

func (e ComparableExpression[V]) compare(op string, v V) *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" " + op + " ")
		r.bind(v)
	})
}

func (e ComparableExpression[V]) compareExpr(op string, other Expression) *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" " + op + " ")
		other.appendSQL(r)
	})
}

// Eq renders expr = v
func (e ComparableExpression[V]) Eq(v V) *Predicate { return e.compare("=", v) }

// Ne renders expr <> v
func (e ComparableExpression[V]) Ne(v V) *Predicate { return e.compare("<>", v) }

func (e ComparableExpression[V]) Gt(v V) *Predicate  { return e.compare(">", v) }
func (e ComparableExpression[V]) Goe(v V) *Predicate { return e.compare(">=", v) }
func (e ComparableExpression[V]) Lt(v V) *Predicate  { return e.compare("<", v) }
func (e ComparableExpression[V]) Loe(v V) *Predicate { return e.compare("<=", v) }

// EqExpr compares against another expression, as in join conditions
func (e ComparableExpression[V]) EqExpr(other TypedExpression[V]) *Predicate {
	return e.compareExpr("=", other)
}

func (e ComparableExpression[V]) NeExpr(other TypedExpression[V]) *Predicate {
	return e.compareExpr("<>", other)
}

func (e ComparableExpression[V]) GtExpr(other TypedExpression[V]) *Predicate {
	return e.compareExpr(">", other)
}

func (e ComparableExpression[V]) LtExpr(other TypedExpression[V]) *Predicate {
	return e.compareExpr("<", other)
}

// Between is inclusive on both ends
func (e ComparableExpression[V]) Between(from, to V) *Predicate {
	return e.between("BETWEEN", from, to)
}

func (e ComparableExpression[V]) NotBetween(from, to V) *Predicate {
	return e.between("NOT BETWEEN", from, to)
}

func (e ComparableExpression[V]) between(op string, from, to V) *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" " + op + " ")
		r.bind(from)
		r.write(" AND ")
		r.bind(to)
	})
}

// In with no values matches nothing
func (e ComparableExpression[V]) In(values ...V) *Predicate {
	if len(values) == 0 {
		return newPredicate(func(r *renderer) { r.write("1 = 0") })
	}
	return e.in("IN", values)
}

// NotIn with no values matches everything
func (e ComparableExpression[V]) NotIn(values ...V) *Predicate {
	if len(values) == 0 {
		return newPredicate(func(r *renderer) { r.write("1 = 1") })
	}
	return e.in("NOT IN", values)
}

func (e ComparableExpression[V]) in(op string, values []V) *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" " + op + " (")
		for i, v := range values {
			if i > 0 {
				r.write(", ")
			}
			r.bind(v)
		}
		r.write(")")
	})
}

func (e ComparableExpression[V]) IsNull() *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" IS NULL")
	})
}

func (e ComparableExpression[V]) IsNotNull() *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" IS NOT NULL")
	})
}

func (e ComparableExpression[V]) Asc() OrderSpecifier {
	return OrderSpecifier{target: e}
}

func (e ComparableExpression[V]) Desc() OrderSpecifier {
	return OrderSpecifier{target: e, desc: true}
}

// Count renders COUNT(expr); NULLs are not counted
func (e ComparableExpression[V]) Count() NumberExpression[int64] {
	return NumberExpression[int64]{aggregate[int64]("COUNT", e, false)}
}

func (e ComparableExpression[V]) CountDistinct() NumberExpression[int64] {
	return NumberExpression[int64]{aggregate[int64]("COUNT", e, true)}
}

func (e ComparableExpression[V]) Min() ComparableExpression[V] {
	return aggregate[V]("MIN", e, false)
}

func (e ComparableExpression[V]) Max() ComparableExpression[V] {
	return aggregate[V]("MAX", e, false)
}

// NumberExpression adds arithmetic aggregates to a comparable expression
type NumberExpression[V Number] struct {
	ComparableExpression[V]
}

func newNumber[V Number](render func(r *renderer)) NumberExpression[V] {
	return NumberExpression[V]{newComparable[V](render)}
}

// Sum keeps the operand type; SUM over no rows scans as zero
func (e NumberExpression[V]) Sum() NumberExpression[V] {
	return NumberExpression[V]{aggregate[V]("SUM", e, false)}
}

// Avg always yields float64
func (e NumberExpression[V]) Avg() NumberExpression[float64] {
	return NumberExpression[float64]{aggregate[float64]("AVG", e, false)}
}

func (e NumberExpression[V]) Min() NumberExpression[V] {
	return NumberExpression[V]{aggregate[V]("MIN", e, false)}
}

func (e NumberExpression[V]) Max() NumberExpression[V] {
	return NumberExpression[V]{aggregate[V]("MAX", e, false)}
}

func (e NumberExpression[V]) Add(v V) NumberExpression[V] {
	return e.arith("+", v)
}

func (e NumberExpression[V]) Subtract(v V) NumberExpression[V] {
	return e.arith("-", v)
}

func (e NumberExpression[V]) Multiply(v V) NumberExpression[V] {
	return e.arith("*", v)
}

func (e NumberExpression[V]) arith(op string, v V) NumberExpression[V] {
	return newNumber[V](func(r *renderer) {
		r.write("(")
		e.appendSQL(r)
		r.write(" " + op + " ")
		r.bind(v)
		r.write(")")
	})
}

func aggregate[V any](fn string, e Expression, distinct bool) ComparableExpression[V] {
	return newComparable[V](func(r *renderer) {
		r.write(fn + "(")
		if distinct {
			r.write("DISTINCT ")
		}
		e.appendSQL(r)
		r.write(")")
	})
}

// StringExpression adds pattern matching to a comparable expression
type StringExpression struct {
	ComparableExpression[string]
}

func newString(render func(r *renderer)) StringExpression {
	return StringExpression{newComparable[string](render)}
}

// Like takes a raw pattern with % and _ wildcards
func (e StringExpression) Like(pattern string) *Predicate {
	return e.compare("LIKE", pattern)
}

func (e StringExpression) NotLike(pattern string) *Predicate {
	return e.compare("NOT LIKE", pattern)
}

// Contains matches s anywhere; wildcards in s are matched literally
func (e StringExpression) Contains(s string) *Predicate {
	return e.likeEscaped("%" + escapeLike(s) + "%")
}

func (e StringExpression) StartsWith(s string) *Predicate {
	return e.likeEscaped(escapeLike(s) + "%")
}

func (e StringExpression) EndsWith(s string) *Predicate {
	return e.likeEscaped("%" + escapeLike(s))
}

func (e StringExpression) likeEscaped(pattern string) *Predicate {
	return newPredicate(func(r *renderer) {
		e.appendSQL(r)
		r.write(" LIKE ")
		r.bind(pattern)
		r.write(" ESCAPE '!'")
	})
}

func (e StringExpression) Lower() StringExpression {
	return e.function("LOWER")
}

func (e StringExpression) Upper() StringExpression {
	return e.function("UPPER")
}

func (e StringExpression) Length() NumberExpression[int] {
	return newNumber[int](func(r *renderer) {
		r.write("LENGTH(")
		e.appendSQL(r)
		r.write(")")
	})
}

func (e StringExpression) Min() StringExpression {
	return StringExpression{aggregate[string]("MIN", e, false)}
}

func (e StringExpression) Max() StringExpression {
	return StringExpression{aggregate[string]("MAX", e, false)}
}

func (e StringExpression) function(name string) StringExpression {
	return newString(func(r *renderer) {
		r.write(name + "(")
		e.appendSQL(r)
		r.write(")")
	})
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
