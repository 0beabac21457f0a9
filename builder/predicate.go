package builder

// Predicate is a boolean condition. A nil *Predicate means "no condition":
// Where, And, Or, AllOf and AnyOf skip it, which keeps dynamic filters simple:
//
//	func usernameEq(name string) *builder.Predicate {
//		if name == "" {
//			return nil
//		}
//		return entity.QMember.Username.Eq(name)
//	}
type Predicate struct {
	*exprNode
	typed[bool]
}

func newPredicate(render func(r *renderer)) *Predicate {
	return &Predicate{exprNode: newNode(render)}
}

// And renders p AND other
func (p *Predicate) And(other *Predicate) *Predicate {
	return AllOf(p, other)
}

// Or renders (p OR other)
func (p *Predicate) Or(other *Predicate) *Predicate {
	return AnyOf(p, other)
}

// Not renders NOT (p)
func (p *Predicate) Not() *Predicate {
	if p == nil {
		return nil
	}
	return newPredicate(func(r *renderer) {
		r.write("NOT (")
		p.appendSQL(r)
		r.write(")")
	})
}

// AllOf joins the non-nil predicates with AND; nil when none remain
func AllOf(preds ...*Predicate) *Predicate {
	return combine(" AND ", false, preds)
}

// AnyOf joins the non-nil predicates with OR inside parentheses; nil when none remain
func AnyOf(preds ...*Predicate) *Predicate {
	return combine(" OR ", true, preds)
}

func combine(sep string, paren bool, preds []*Predicate) *Predicate {
	list := compact(preds)
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return newPredicate(func(r *renderer) {
		if paren {
			r.write("(")
		}
		for i, p := range list {
			if i > 0 {
				r.write(sep)
			}
			p.appendSQL(r)
		}
		if paren {
			r.write(")")
		}
	})
}

func compact(preds []*Predicate) []*Predicate {
	out := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
