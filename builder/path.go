package builder

import (
	"fmt"
)

// Source is a table occurrence in a FROM or JOIN clause
type Source interface {
	TableName() string
	Alias() string
}

// Table describes how rows of one table map onto values of T. Columns are
// selected in order and Scan receives them in that order.
type Table[T any] struct {
	Name       string
	PrimaryKey string
	Columns    []string
	Scan       func(s Session, scan func(dest ...interface{}) error) (T, error)
	ID         func(T) int64
}

// EntitySource is implemented by entity paths, including generated wrappers
// that embed *EntityPath[T].
type EntitySource[T any] interface {
	Source
	Root() *EntityPath[T]
}

// EntityPath is a table bound to an alias, the root of the column paths
type EntityPath[T any] struct {
	table *Table[T]
	alias string
	id    NumberPath[int64]
}

func NewEntityPath[T any](table *Table[T], alias string) *EntityPath[T] {
	if alias == "" {
		alias = table.Name
	}
	p := &EntityPath[T]{table: table, alias: alias}
	p.id = NewNumberPath[int64](p, table.PrimaryKey)
	return p
}

func (p *EntityPath[T]) TableName() string    { return p.table.Name }
func (p *EntityPath[T]) Alias() string        { return p.alias }
func (p *EntityPath[T]) Table() *Table[T]     { return p.table }
func (p *EntityPath[T]) Root() *EntityPath[T] { return p }

// IDPath is the primary key column of this occurrence
func (p *EntityPath[T]) IDPath() NumberPath[int64] {
	return p.id
}

// Count renders COUNT of the primary key
func (p *EntityPath[T]) Count() NumberExpression[int64] {
	return p.id.Count()
}

func (p *EntityPath[T]) String() string {
	return fmt.Sprintf("%s %s", p.table.Name, p.alias)
}

func columnRenderer(parent Source, column string) func(r *renderer) {
	return func(r *renderer) {
		r.column(parent.Alias(), column)
	}
}

// StringPath is a text column
type StringPath struct {
	StringExpression
	column string
}

func NewStringPath(parent Source, column string) StringPath {
	return StringPath{StringExpression: newString(columnRenderer(parent, column)), column: column}
}

func (p StringPath) Column() string { return p.column }

// NumberPath is a numeric column
type NumberPath[V Number] struct {
	NumberExpression[V]
	column string
}

func NewNumberPath[V Number](parent Source, column string) NumberPath[V] {
	return NumberPath[V]{NumberExpression: newNumber[V](columnRenderer(parent, column)), column: column}
}

func (p NumberPath[V]) Column() string { return p.column }

// RelationPath is the owning side of a many-to-one association: a foreign key
// column on the parent pointing at the target table's primary key.
type RelationPath struct {
	parent      Source
	column      string
	targetTable string
	targetKey   string
	fk          NumberPath[int64]
}

func NewRelationPath(parent Source, column, targetTable, targetKey string) RelationPath {
	return RelationPath{
		parent:      parent,
		column:      column,
		targetTable: targetTable,
		targetKey:   targetKey,
		fk:          NewNumberPath[int64](parent, column),
	}
}

// FK is the foreign key column itself, for filters such as Team.FK().IsNull()
func (p RelationPath) FK() NumberPath[int64] { return p.fk }

func (p RelationPath) Column() string      { return p.column }
func (p RelationPath) TargetTable() string { return p.targetTable }

// on renders parent.fk = target.pk for a join against target
func (p RelationPath) on(target Source) (*Predicate, error) {
	if target.TableName() != p.targetTable {
		return nil, fmt.Errorf("relation %s.%s targets %s, not %s", p.parent.Alias(), p.column, p.targetTable, target.TableName())
	}
	return newPredicate(func(r *renderer) {
		r.column(p.parent.Alias(), p.column)
		r.write(" = ")
		r.column(target.Alias(), p.targetKey)
	}), nil
}
