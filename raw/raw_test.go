package raw_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/entity"
	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
	testutil "github.com/study/querydsl-go/internal/testing"
	"github.com/study/querydsl-go/internal/testing/fixture"
	"github.com/study/querydsl-go/raw"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		sql      string
		params   map[string]interface{}
		wantSQL  string
		wantArgs []interface{}
		wantErr  bool
	}{
		{
			name:     "postgresql placeholders",
			provider: "postgresql",
			sql:      "SELECT * FROM member WHERE username = :username AND age > :age",
			params:   map[string]interface{}{"username": "member1", "age": 5},
			wantSQL:  "SELECT * FROM member WHERE username = $1 AND age > $2",
			wantArgs: []interface{}{"member1", 5},
		},
		{
			name:     "repeated parameter is bound twice",
			provider: "mysql",
			sql:      "SELECT * FROM member WHERE age > :age OR age < :age",
			params:   map[string]interface{}{"age": 30},
			wantSQL:  "SELECT * FROM member WHERE age > ? OR age < ?",
			wantArgs: []interface{}{30, 30},
		},
		{
			name:     "quotes casts and comments are left alone",
			provider: "postgresql",
			sql:      "SELECT ':skip', age::text FROM member -- :comment\nWHERE username = :username",
			params:   map[string]interface{}{"username": "it's"},
			wantSQL:  "SELECT ':skip', age::text FROM member -- :comment\nWHERE username = $1",
			wantArgs: []interface{}{"it's"},
		},
		{
			name:     "escaped quote inside string",
			provider: "sqlite",
			sql:      "SELECT 'a'':b' , :x",
			params:   map[string]interface{}{"x": 1},
			wantSQL:  "SELECT 'a'':b' , ?",
			wantArgs: []interface{}{1},
		},
		{
			name:     "block comment",
			provider: "postgresql",
			sql:      "SELECT /* :note\n */ * FROM member WHERE age = :age /* unclosed :x",
			params:   map[string]interface{}{"age": 10},
			wantSQL:  "SELECT /* :note\n */ * FROM member WHERE age = $1 /* unclosed :x",
			wantArgs: []interface{}{10},
		},
		{
			name:     "mysql backslash escape inside string",
			provider: "mysql",
			sql:      `SELECT * FROM member WHERE username <> 'it\'s :u' AND age = :a`,
			params:   map[string]interface{}{"a": 20},
			wantSQL:  `SELECT * FROM member WHERE username <> 'it\'s :u' AND age = ?`,
			wantArgs: []interface{}{20},
		},
		{
			name:     "backslash is literal outside mysql",
			provider: "postgresql",
			sql:      `SELECT 'a\' , :b`,
			params:   map[string]interface{}{"b": 1},
			wantSQL:  `SELECT 'a\' , $1`,
			wantArgs: []interface{}{1},
		},
		{
			name:     "colon prefix on parameter name",
			provider: "sqlite",
			sql:      "SELECT :id",
			params:   map[string]interface{}{":id": 7},
			wantSQL:  "SELECT ?",
			wantArgs: []interface{}{7},
		},
		{
			name:     "missing parameter",
			provider: "sqlite",
			sql:      "SELECT * FROM member WHERE username = :username",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := raw.New(builder.NewSession(nil, dialect.GetDialect(tt.provider)), tt.sql)
			for name, v := range tt.params {
				q.SetParameter(name, v)
			}

			sql, args, err := q.Compile()
			if tt.wantErr {
				assert.ErrorIs(t, err, builder.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestNativeQuery(t *testing.T) {
	for _, provider := range testutil.Providers() {
		t.Run(provider, func(t *testing.T) {
			ctx := context.Background()
			em := fixture.NewEntityManager(t, provider)
			f := fixture.Standard(t, em)
			const selectMember = "SELECT member_id, username, age, team_id FROM member"

			t.Run("result list", func(t *testing.T) {
				members, err := raw.ResultList(ctx,
					em.CreateNativeQuery(selectMember+" WHERE age BETWEEN :from AND :to ORDER BY age").
						SetParameter("from", 20).
						SetParameter("to", 40),
					entity.QMember)
				require.NoError(t, err)
				require.Len(t, members, 3)
				// pending inserts were flushed and rows map onto managed instances
				assert.Same(t, f.Members[1], members[0])
			})

			t.Run("single result", func(t *testing.T) {
				m, err := raw.SingleResult(ctx,
					em.CreateNativeQuery(selectMember+" WHERE username = :username").SetParameter("username", "member1"),
					entity.QMember)
				require.NoError(t, err)
				assert.Equal(t, 10, m.Age())

				_, err = raw.SingleResult(ctx,
					em.CreateNativeQuery(selectMember+" WHERE age > :age").SetParameter("age", 10),
					entity.QMember)
				assert.ErrorIs(t, err, builder.ErrNonUniqueResult)

				_, err = raw.SingleResult(ctx,
					em.CreateNativeQuery(selectMember+" WHERE username = :username").SetParameter("username", "nobody"),
					entity.QMember)
				assert.ErrorIs(t, err, builder.ErrNoResult)
			})

			t.Run("empty result list", func(t *testing.T) {
				members, err := raw.ResultList(ctx,
					em.CreateNativeQuery(selectMember+" WHERE age > :age").SetParameter("age", 1000),
					entity.QMember)
				require.NoError(t, err)
				assert.NotNil(t, members)
				assert.Empty(t, members)
			})

			t.Run("rows", func(t *testing.T) {
				var names []string
				err := em.CreateNativeQuery("SELECT t.name FROM team t ORDER BY t.name").
					Rows(ctx, func(rows driver.Rows) error {
						var name string
						if err := rows.Scan(&name); err != nil {
							return err
						}
						names = append(names, name)
						return nil
					})
				require.NoError(t, err)
				assert.Equal(t, []string{"teamA", "teamB"}, names)
			})
		})
	}
}
