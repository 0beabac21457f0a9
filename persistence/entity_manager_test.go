package persistence_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/entity"
	"github.com/study/querydsl-go/internal/config"
	"github.com/study/querydsl-go/internal/migrations"
	testutil "github.com/study/querydsl-go/internal/testing"
	"github.com/study/querydsl-go/internal/testing/fixture"
	"github.com/study/querydsl-go/persistence"
)

func TestEntityManager(t *testing.T) {
	for _, provider := range testutil.Providers() {
		t.Run(provider, func(t *testing.T) {
			ctx := context.Background()

			t.Run("flush assigns ids in persist order", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				f := fixture.Standard(t, em)
				assert.Zero(t, f.TeamA.ID())
				assert.True(t, em.Contains(f.TeamA))

				require.NoError(t, em.Flush(ctx))
				assert.NotZero(t, f.TeamA.ID())
				assert.Greater(t, f.TeamB.ID(), f.TeamA.ID())
				for i := 1; i < len(f.Members); i++ {
					assert.Greater(t, f.Members[i].ID(), f.Members[i-1].ID())
				}
				assert.True(t, em.Contains(f.Members[0]))
			})

			t.Run("queries flush first", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				f := fixture.Standard(t, em)

				found, err := builder.SelectFrom(em, entity.QMember).
					Where(entity.QMember.Username.Eq("member1")).
					FetchOne(ctx)
				require.NoError(t, err)
				assert.Same(t, f.Members[0], found)
			})

			t.Run("find", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				f := fixture.Standard(t, em)
				require.NoError(t, em.Flush(ctx))

				managed, err := persistence.Find(ctx, em, entity.QTeam, f.TeamA.ID())
				require.NoError(t, err)
				assert.Same(t, f.TeamA, managed)

				em.Clear()
				assert.False(t, em.Contains(f.TeamA))

				loaded, err := persistence.Find(ctx, em, entity.QTeam, f.TeamA.ID())
				require.NoError(t, err)
				assert.NotSame(t, f.TeamA, loaded)
				assert.Equal(t, "teamA", loaded.Name())

				again, err := persistence.Find(ctx, em, entity.QTeam, f.TeamA.ID())
				require.NoError(t, err)
				assert.Same(t, loaded, again)

				_, err = persistence.Find(ctx, em, entity.QTeam, f.TeamB.ID()+1000)
				assert.ErrorIs(t, err, builder.ErrNoResult)
			})

			t.Run("persist is idempotent", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				team := entity.NewTeam("teamA")
				require.NoError(t, em.Persist(team))
				require.NoError(t, em.Persist(team))
				require.NoError(t, em.Flush(ctx))
				require.NoError(t, em.Persist(team))

				count, err := builder.SelectFrom(em, entity.QTeam).FetchCount(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(1), count)
			})

			t.Run("closed manager", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				require.NoError(t, em.Rollback(ctx))
				assert.False(t, em.IsOpen())

				assert.ErrorIs(t, em.Persist(entity.NewTeam("teamA")), builder.ErrClosed)
				assert.ErrorIs(t, em.Flush(ctx), builder.ErrClosed)
				assert.ErrorIs(t, em.Commit(ctx), builder.ErrClosed)
				assert.NoError(t, em.Close(ctx))

				_, err := builder.SelectFrom(em, entity.QMember).Fetch(ctx)
				assert.ErrorIs(t, err, builder.ErrClosed)
				_, err = persistence.Find(ctx, em, entity.QMember, 1)
				assert.ErrorIs(t, err, builder.ErrClosed)
			})

			t.Run("rollback discards", func(t *testing.T) {
				factory := fixture.NewFactory(t, provider)

				em, err := factory.CreateEntityManager(ctx)
				require.NoError(t, err)
				fixture.Standard(t, em)
				require.NoError(t, em.Flush(ctx))
				require.NoError(t, em.Close(ctx))

				em = fixture.Begin(t, factory)
				count, err := builder.SelectFrom(em, entity.QMember).FetchCount(ctx)
				require.NoError(t, err)
				assert.Zero(t, count)
			})

			t.Run("concurrent managers", func(t *testing.T) {
				factory := fixture.NewFactory(t, provider)
				bounded, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()

				writer, err := factory.CreateEntityManager(bounded)
				require.NoError(t, err)
				defer writer.Close(ctx)
				fixture.Standard(t, writer)
				require.NoError(t, writer.Flush(bounded))

				// a second manager opens and reads while the first holds uncommitted inserts
				reader, err := factory.CreateEntityManager(bounded)
				require.NoError(t, err)
				defer reader.Close(ctx)
				count, err := builder.SelectFrom(reader, entity.QMember).FetchCount(bounded)
				require.NoError(t, err)
				assert.Zero(t, count)
				require.NoError(t, reader.Rollback(bounded))

				require.NoError(t, writer.Commit(bounded))
				after := fixture.Begin(t, factory)
				count, err = builder.SelectFrom(after, entity.QMember).FetchCount(bounded)
				require.NoError(t, err)
				assert.Equal(t, int64(6), count)
			})

			t.Run("native exec", func(t *testing.T) {
				em := fixture.NewEntityManager(t, provider)
				fixture.Standard(t, em)

				n, err := em.CreateNativeQuery("UPDATE member SET age = age + 1 WHERE age >= :age").
					SetParameter("age", 40).
					Exec(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(3), n)
			})
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	cfg, err := config.Parse(fmt.Sprintf(`
log = ["warn", "error"]

[datasource]
url = "sqlite://%s"

[timeouts]
slow_query = "2s"

[n1_detection]
enabled = true
threshold = 3
window = "1m"
`, filepath.ToSlash(path)))
	require.NoError(t, err)

	ctx := context.Background()
	factory, err := persistence.Open(ctx, cfg)
	require.NoError(t, err)
	defer factory.Close()

	assert.Equal(t, "sqlite", factory.Provider())
	require.NotNil(t, factory.Detector())

	m, err := migrations.New(factory.DB().SQLDB(), factory.Provider(), cfg.Migrations.Table)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	em, err := factory.CreateEntityManager(ctx)
	require.NoError(t, err)
	defer em.Close(ctx)
	assert.NotEmpty(t, em.SessionID())

	fixture.Persist(t, em, 5)
	fixture.FlushAndClear(t, em)

	members, err := builder.SelectFrom(em, entity.QMember).Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, members, 5)
	em.Clear()

	// one lookup per member is the N+1 shape
	for _, m := range members {
		_, err := persistence.Find(ctx, em, entity.QMember, m.ID())
		require.NoError(t, err)
	}
	alerts := factory.Detector().Check()
	require.Len(t, alerts, 1)
	assert.Equal(t, 5, alerts[0].Count)
	assert.Equal(t, []string{"member"}, alerts[0].TableNames)
}
