package builder

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
	testutil "github.com/study/querydsl-go/internal/testing"
)

// row types mapped onto the member and team tables of the embedded schema

type testTeam struct {
	id   int64
	name string
}

type testMember struct {
	id       int64
	username sql.NullString
	age      int
	teamID   sql.NullInt64
}

var testTeamTable = &Table[*testTeam]{
	Name:       "team",
	PrimaryKey: "team_id",
	Columns:    []string{"team_id", "name"},
	Scan: func(_ Session, scan func(dest ...interface{}) error) (*testTeam, error) {
		t := &testTeam{}
		if err := scan(&t.id, &t.name); err != nil {
			return nil, err
		}
		return t, nil
	},
	ID: func(t *testTeam) int64 { return t.id },
}

var testMemberTable = &Table[*testMember]{
	Name:       "member",
	PrimaryKey: "member_id",
	Columns:    []string{"member_id", "username", "age", "team_id"},
	Scan: func(_ Session, scan func(dest ...interface{}) error) (*testMember, error) {
		m := &testMember{}
		if err := scan(&m.id, &m.username, &m.age, &m.teamID); err != nil {
			return nil, err
		}
		return m, nil
	},
	ID: func(m *testMember) int64 { return m.id },
}

type teamPath struct {
	*EntityPath[*testTeam]
	ID   NumberPath[int64]
	Name StringPath
}

func newTeamPath(alias string) *teamPath {
	p := &teamPath{EntityPath: NewEntityPath(testTeamTable, alias)}
	p.ID = p.IDPath()
	p.Name = NewStringPath(p, "name")
	return p
}

type memberPath struct {
	*EntityPath[*testMember]
	ID       NumberPath[int64]
	Username StringPath
	Age      NumberPath[int]
	Team     RelationPath
}

func newMemberPath(alias string) *memberPath {
	p := &memberPath{EntityPath: NewEntityPath(testMemberTable, alias)}
	p.ID = p.IDPath()
	p.Username = NewStringPath(p, "username")
	p.Age = NewNumberPath[int](p, "age")
	p.Team = NewRelationPath(p, "team_id", "team", "team_id")
	return p
}

var (
	qMember = newMemberPath("member")
	qTeam   = newTeamPath("team")
)

// renderSession renders without a connection
func renderSession(provider string) *DBSession {
	return NewSession(nil, dialect.GetDialect(provider))
}

// mockSession is a PostgreSQL session over sqlmock with exact SQL matching
func mockSession(t *testing.T) (*DBSession, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSession(driver.NewSQLDB(db), dialect.GetDialect("postgresql")), mock
}

// seedSession opens a migrated database and inserts teamA with members aged
// 10, 20, 30 and teamB with members aged 40, 50, 60.
func seedSession(t *testing.T, provider string) *DBSession {
	t.Helper()
	db, cleanup := testutil.SetupTestDB(t, provider)
	t.Cleanup(cleanup)
	s := NewSession(db, dialect.GetDialect(provider))

	ctx := context.Background()
	ph := s.Dialect().GetPlaceholder
	for _, name := range []string{"teamA", "teamB"} {
		_, err := Exec(ctx, s, "INSERT INTO team (name) VALUES ("+ph(1)+")", name)
		require.NoError(t, err)
	}
	insertMember := "INSERT INTO member (username, age, team_id) VALUES (" +
		ph(1) + ", " + ph(2) + ", (SELECT team_id FROM team WHERE name = " + ph(3) + "))"
	for i := 1; i <= 6; i++ {
		team := "teamA"
		if i > 3 {
			team = "teamB"
		}
		_, err := Exec(ctx, s, insertMember, fmt.Sprintf("member%d", i), i*10, team)
		require.NoError(t, err)
	}
	return s
}
