// Package querydsl is a type-safe query builder over a small member/team
// domain.
//
// It includes:
//   - Generated-style query paths (entity.QMember, entity.QTeam)
//   - A fluent builder with predicates, ordering, paging, aggregation and joins
//   - An entity manager with persist order, flush and an identity map
//   - Native SQL queries with named parameters
//   - Embedded goose migrations for SQLite, PostgreSQL and MySQL
//
// Example usage:
//
//	factory, err := persistence.Open(ctx, cfg)
//	em, err := factory.CreateEntityManager(ctx)
//
//	m := entity.QMember
//	members, err := builder.SelectFrom(em, m).
//	    Where(m.Username.Eq("member1"), m.Age.Between(10, 30)).
//	    OrderBy(m.Age.Desc(), m.Username.Asc().NullsLast()).
//	    Offset(1).
//	    Limit(2).
//	    Fetch(ctx)
//
// CLI Commands:
//
//	querydsl migrate up          # Apply the embedded migrations
//	querydsl seed                # Insert the sample teams and members
//	querydsl report --watch      # Run the sample queries, again on config change
package querydsl

const Version = "0.1.0"
