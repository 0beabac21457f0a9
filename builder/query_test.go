package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memberColumns = `"member"."member_id", "member"."username", "member"."age", "member"."team_id"`

func TestQuery_ToSQL(t *testing.T) {
	s := renderSession("postgresql")

	tests := []struct {
		name     string
		query    func() (string, []interface{})
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name: "select from",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member"`,
		},
		{
			name: "eq",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).Where(qMember.Username.Eq("member1")).ToSQL()
			},
			wantSQL:  `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."username" = $1`,
			wantArgs: []interface{}{"member1"},
		},
		{
			name: "where arguments are and-ed",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).
					Where(qMember.Username.Eq("member1"), qMember.Age.Between(10, 30)).
					ToSQL()
			},
			wantSQL:  `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."username" = $1 AND "member"."age" BETWEEN $2 AND $3`,
			wantArgs: []interface{}{"member1", 10, 30},
		},
		{
			name: "nil predicates are skipped",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).Where(nil, qMember.Age.Goe(30), nil).ToSQL()
			},
			wantSQL:  `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."age" >= $1`,
			wantArgs: []interface{}{30},
		},
		{
			name: "or not and in",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).
					Where(qMember.Age.Lt(20).Or(qMember.Age.Gt(50)), qMember.Username.In("member1", "member6").Not()).
					ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE ("member"."age" < $1 OR "member"."age" > $2)` +
				` AND NOT ("member"."username" IN ($3, $4))`,
			wantArgs: []interface{}{20, 50, "member1", "member6"},
		},
		{
			name: "empty in matches nothing",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).Where(qMember.Age.In()).ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE 1 = 0`,
		},
		{
			name: "null checks and like",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).
					Where(qMember.Username.IsNotNull(), qMember.Team.FK().IsNull(), qMember.Username.Like("member%")).
					ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."username" IS NOT NULL` +
				` AND "member"."team_id" IS NULL AND "member"."username" LIKE $1`,
			wantArgs: []interface{}{"member%"},
		},
		{
			name: "contains escapes wildcards",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).Where(qMember.Username.Contains("50%_off")).ToSQL()
			},
			wantSQL:  `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."username" LIKE $1 ESCAPE '!'`,
			wantArgs: []interface{}{"%50!%!_off%"},
		},
		{
			name: "order nulls last",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).
					Where(qMember.Age.Eq(100)).
					OrderBy(qMember.Age.Desc(), qMember.Username.Asc().NullsLast()).
					ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member" WHERE "member"."age" = $1` +
				` ORDER BY "member"."age" DESC, "member"."username" ASC NULLS LAST`,
			wantArgs: []interface{}{100},
		},
		{
			name: "offset and limit",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).OrderBy(qMember.Username.Desc()).Offset(1).Limit(2).ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member" ORDER BY "member"."username" DESC LIMIT 2 OFFSET 1`,
		},
		{
			name: "select expression",
			query: func() (string, []interface{}) {
				return Select(s, qMember.Username).From(qMember).Distinct().ToSQL()
			},
			wantSQL: `SELECT DISTINCT "member"."username" FROM "member" AS "member"`,
		},
		{
			name: "aggregates",
			query: func() (string, []interface{}) {
				return SelectTuple(s, qMember.Count(), qMember.Age.Sum(), qMember.Age.Avg(), qMember.Age.Max(), qMember.Age.Min()).
					From(qMember).
					ToSQL()
			},
			wantSQL: `SELECT COUNT("member"."member_id"), SUM("member"."age"), AVG("member"."age"), MAX("member"."age"), MIN("member"."age")` +
				` FROM "member" AS "member"`,
		},
		{
			name: "join group by having",
			query: func() (string, []interface{}) {
				return SelectTuple(s, qTeam.Name, qMember.Age.Avg()).
					From(qMember).
					Join(qMember.Team, qTeam).
					GroupBy(qTeam.Name).
					Having(qMember.Age.Avg().Gt(10)).
					ToSQL()
			},
			wantSQL: `SELECT "team"."name", AVG("member"."age") FROM "member" AS "member"` +
				` INNER JOIN "team" AS "team" ON "member"."team_id" = "team"."team_id"` +
				` GROUP BY "team"."name" HAVING AVG("member"."age") > $1`,
			wantArgs: []interface{}{float64(10)},
		},
		{
			name: "left join with alias",
			query: func() (string, []interface{}) {
				t2 := newTeamPath("t")
				return SelectFrom(s, qMember).LeftJoin(qMember.Team, t2).Where(t2.Name.Eq("teamA")).ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member"` +
				` LEFT JOIN "team" AS "t" ON "member"."team_id" = "t"."team_id" WHERE "t"."name" = $1`,
			wantArgs: []interface{}{"teamA"},
		},
		{
			name: "theta join",
			query: func() (string, []interface{}) {
				return SelectFrom(s, qMember).From(qTeam).Where(qMember.Username.EqExpr(qTeam.Name)).ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member", "team" AS "team"` +
				` WHERE "member"."username" = "team"."name"`,
		},
		{
			name: "joins with explicit conditions",
			query: func() (string, []interface{}) {
				t2 := newTeamPath("t")
				return SelectFrom(s, qMember).
					JoinOn(t2, qMember.Team.FK().EqExpr(t2.ID)).
					LeftJoinOn(qTeam, qMember.Username.NeExpr(qTeam.Name)).
					Where(qMember.ID.GtExpr(t2.ID), qMember.ID.LtExpr(qTeam.ID)).
					ToSQL()
			},
			wantSQL: `SELECT ` + memberColumns + ` FROM "member" AS "member"` +
				` INNER JOIN "team" AS "t" ON "member"."team_id" = "t"."team_id"` +
				` LEFT JOIN "team" AS "team" ON "member"."username" <> "team"."name"` +
				` WHERE "member"."member_id" > "t"."team_id" AND "member"."member_id" < "team"."team_id"`,
		},
		{
			name: "string functions and arithmetic",
			query: func() (string, []interface{}) {
				return Select(s, qMember.Age.Subtract(1).Multiply(2)).
					From(qMember).
					Where(qMember.Username.Lower().Eq("member1"), qMember.Username.Upper().Length().Gt(3)).
					ToSQL()
			},
			wantSQL: `SELECT (("member"."age" - $1) * $2) FROM "member" AS "member"` +
				` WHERE LOWER("member"."username") = $3 AND LENGTH(UPPER("member"."username")) > $4`,
			wantArgs: []interface{}{1, 2, "member1", 3},
		},
		{
			name: "template and arithmetic",
			query: func() (string, []interface{}) {
				return Select(s, Template[int]("COALESCE(?, 0)", qMember.Age.Add(1))).From(qMember).ToSQL()
			},
			wantSQL:  `SELECT COALESCE(("member"."age" + $1), 0) FROM "member" AS "member"`,
			wantArgs: []interface{}{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.query()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestQuery_ToSQL_MySQL(t *testing.T) {
	s := renderSession("mysql")

	t.Run("nulls last is emulated", func(t *testing.T) {
		sql, args := SelectFrom(s, qMember).
			OrderBy(qMember.Age.Desc(), qMember.Username.Asc().NullsLast()).
			ToSQL()
		assert.Equal(t, "SELECT `member`.`member_id`, `member`.`username`, `member`.`age`, `member`.`team_id` FROM `member` AS `member`"+
			" ORDER BY `member`.`age` DESC, `member`.`username` IS NULL ASC, `member`.`username` ASC", sql)
		assert.Empty(t, args)
	})

	t.Run("emulated order repeats arguments", func(t *testing.T) {
		sql, args := Select(s, qMember.Age).
			From(qMember).
			Where(qMember.Age.Gt(5)).
			OrderBy(qMember.Age.Add(1).Desc().NullsFirst()).
			ToSQL()
		assert.Equal(t, "SELECT `member`.`age` FROM `member` AS `member` WHERE `member`.`age` > ?"+
			" ORDER BY (`member`.`age` + ?) IS NULL DESC, (`member`.`age` + ?) DESC", sql)
		assert.Equal(t, []interface{}{5, 1, 1}, args)
	})

	t.Run("offset without limit", func(t *testing.T) {
		sql, _ := Select(s, qMember.Age).From(qMember).Offset(3).ToSQL()
		assert.Equal(t, "SELECT `member`.`age` FROM `member` AS `member` LIMIT 18446744073709551615 OFFSET 3", sql)
	})
}

func TestQuery_ToSQL_SQLite(t *testing.T) {
	s := renderSession("sqlite")

	sql, args := SelectFrom(s, qMember).
		Where(qMember.Username.Eq("member1")).
		OrderBy(qMember.Username.Asc().NullsFirst()).
		Offset(2).
		ToSQL()
	assert.Equal(t, `SELECT `+memberColumns+` FROM "member" AS "member" WHERE "member"."username" = ?`+
		` ORDER BY "member"."username" ASC NULLS FIRST LIMIT -1 OFFSET 2`, sql)
	assert.Equal(t, []interface{}{"member1"}, args)
}

func TestQuery_RenderCount(t *testing.T) {
	s := renderSession("postgresql")

	t.Run("plain", func(t *testing.T) {
		sql, args := SelectFrom(s, qMember).Where(qMember.Age.Gt(20)).Offset(1).Limit(2).renderCount()
		assert.Equal(t, `SELECT COUNT(*) FROM "member" AS "member" WHERE "member"."age" > $1`, sql)
		assert.Equal(t, []interface{}{20}, args)
	})

	t.Run("grouped", func(t *testing.T) {
		sql, _ := SelectTuple(s, qTeam.Name, qMember.Age.Avg()).
			From(qMember).
			Join(qMember.Team, qTeam).
			GroupBy(qTeam.Name).
			renderCount()
		assert.Equal(t, `SELECT COUNT(*) FROM (SELECT "team"."name" FROM "member" AS "member"`+
			` INNER JOIN "team" AS "team" ON "member"."team_id" = "team"."team_id" GROUP BY "team"."name") "grouped"`, sql)
	})

	t.Run("distinct", func(t *testing.T) {
		sql, _ := Select(s, qMember.Age).From(qMember).Distinct().renderCount()
		assert.Equal(t, `SELECT COUNT(*) FROM (SELECT DISTINCT "member"."age" FROM "member" AS "member") "distinct_rows"`, sql)
	})
}

func TestQuery_InvalidConstruction(t *testing.T) {
	s := renderSession("postgresql")

	tests := []struct {
		name  string
		query *Query[*testMember]
	}{
		{name: "negative limit", query: SelectFrom(s, qMember).Limit(-1)},
		{name: "negative offset", query: SelectFrom(s, qMember).Offset(-1)},
		{name: "join on unrelated table", query: SelectFrom(s, qMember).Join(qMember.Team, qMember)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}

	t.Run("missing from", func(t *testing.T) {
		_, err := Select(s, qMember.Age).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})
}

func TestPredicate_Combinators(t *testing.T) {
	assert.Nil(t, AllOf())
	assert.Nil(t, AnyOf(nil, nil))

	var p *Predicate
	assert.Nil(t, p.Not())

	single := qMember.Age.Eq(1)
	assert.Same(t, single, AllOf(nil, single))
	assert.Same(t, single, p.And(single))
}
