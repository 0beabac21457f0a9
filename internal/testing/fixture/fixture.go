// Package fixture builds the standard member/team data set inside an
// EntityManager for tests.
package fixture

import (
	"context"
	"fmt"
	"testing"

	"github.com/study/querydsl-go/entity"
	"github.com/study/querydsl-go/internal/dialect"
	testutil "github.com/study/querydsl-go/internal/testing"
	"github.com/study/querydsl-go/persistence"
)

// Fixture is teamA with member1..3 (ages 10, 20, 30) and teamB with
// member4..6 (ages 40, 50, 60)
type Fixture struct {
	TeamA   *entity.Team
	TeamB   *entity.Team
	Members []*entity.Member
}

// NewFactory opens a migrated test database for provider
func NewFactory(t *testing.T, provider string) *persistence.EntityManagerFactory {
	t.Helper()
	db, cleanup := testutil.SetupTestDB(t, provider)
	t.Cleanup(cleanup)
	return persistence.NewEntityManagerFactory(db, dialect.GetDialect(provider))
}

// NewEntityManager returns a manager whose transaction is rolled back when the
// test ends
func NewEntityManager(t *testing.T, provider string) *persistence.EntityManager {
	t.Helper()
	return begin(t, NewFactory(t, provider), false)
}

// Begin returns a manager of f that is rolled back when the test ends
func Begin(t *testing.T, f *persistence.EntityManagerFactory) *persistence.EntityManager {
	t.Helper()
	return begin(t, f, false)
}

// BeginCommitting returns a manager of f that is committed when the test
// ends, unless the test closed it first
func BeginCommitting(t *testing.T, f *persistence.EntityManagerFactory) *persistence.EntityManager {
	t.Helper()
	return begin(t, f, true)
}

func begin(t *testing.T, f *persistence.EntityManagerFactory, commit bool) *persistence.EntityManager {
	t.Helper()
	em, err := f.CreateEntityManager(context.Background())
	if err != nil {
		t.Fatalf("failed to create entity manager: %v", err)
	}
	t.Cleanup(func() {
		if !em.IsOpen() {
			return
		}
		var err error
		if commit {
			err = em.Commit(context.Background())
		} else {
			err = em.Rollback(context.Background())
		}
		if err != nil {
			t.Errorf("failed to end transaction: %v", err)
		}
	})
	return em
}

// Persist queues teams and then members, like the data set a test starts
// from; n limits the number of members (six at most)
func Persist(t *testing.T, em *persistence.EntityManager, n int) *Fixture {
	t.Helper()
	if n > 6 {
		n = 6
	}

	f := &Fixture{TeamA: entity.NewTeam("teamA"), TeamB: entity.NewTeam("teamB")}
	mustPersist(t, em, f.TeamA)
	mustPersist(t, em, f.TeamB)

	for i := 1; i <= n; i++ {
		team := f.TeamA
		if i > 3 {
			team = f.TeamB
		}
		m := entity.NewMember(fmt.Sprintf("member%d", i), i*10, team)
		mustPersist(t, em, m)
		f.Members = append(f.Members, m)
	}
	return f
}

// Standard persists the six-member data set without flushing
func Standard(t *testing.T, em *persistence.EntityManager) *Fixture {
	t.Helper()
	return Persist(t, em, 6)
}

// FlushAndClear writes pending inserts and detaches everything, so later
// reads go to the database
func FlushAndClear(t *testing.T, em *persistence.EntityManager) {
	t.Helper()
	if err := em.Flush(context.Background()); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}
	em.Clear()
}

func mustPersist(t *testing.T, em *persistence.EntityManager, e persistence.Persistable) {
	t.Helper()
	if err := em.Persist(e); err != nil {
		t.Fatalf("failed to persist %v: %v", e, err)
	}
}
