package entity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/study/querydsl-go/builder"
)

// Member belongs to at most one team. The team reference is the owning side
// of the relation and is resolved lazily for members read from the database.
type Member struct {
	id       int64
	username sql.NullString
	age      int
	team     *Team
	teamID   sql.NullInt64
	session  builder.Session
}

// NewMember creates a transient member; a nil team leaves team_id NULL
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{username: sql.NullString{String: username, Valid: true}, age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// NewUnnamedMember creates a transient member whose username is NULL
func NewUnnamedMember(age int, team *Team) *Member {
	m := &Member{age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// ChangeTeam moves the member to team, updating both sides of the relation
func (m *Member) ChangeTeam(team *Team) {
	if m.team == team && team != nil {
		return
	}
	if old := m.currentTeam(); old != nil {
		old.removeMember(m)
	}
	m.team = team
	if team == nil {
		m.teamID = sql.NullInt64{}
		return
	}
	m.teamID = sql.NullInt64{Int64: team.id, Valid: team.id != 0}
	team.addMember(m)
}

// currentTeam returns the resolved team, or the managed instance of an
// unresolved one when the session keeps an identity map
func (m *Member) currentTeam() *Team {
	if m.team != nil || !m.teamID.Valid {
		return m.team
	}
	im, ok := m.session.(builder.IdentityMap)
	if !ok {
		return nil
	}
	if v, found := im.Lookup(teamTable.Name, m.teamID.Int64); found {
		if t, ok := v.(*Team); ok {
			return t
		}
	}
	return nil
}

func (m *Member) ID() int64 {
	return m.id
}

// Username returns "" when the username is NULL
func (m *Member) Username() string {
	return m.username.String
}

func (m *Member) HasUsername() bool {
	return m.username.Valid
}

func (m *Member) Age() int {
	return m.age
}

// Team returns the member's team, loading it on first access. It returns nil
// when the member has no team.
func (m *Member) Team(ctx context.Context) (*Team, error) {
	if m.team != nil || !m.teamID.Valid {
		return m.team, nil
	}
	if m.session == nil {
		return nil, fmt.Errorf("member %d: team not loaded and no session attached", m.id)
	}
	team, err := builder.FindByID(ctx, m.session, QTeam, m.teamID.Int64)
	if err != nil {
		return nil, fmt.Errorf("failed to load team of member %d: %w", m.id, err)
	}
	m.team = team
	return team, nil
}

func (m *Member) String() string {
	username := "null"
	if m.username.Valid {
		username = m.username.String
	}
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.id, username, m.age)
}

func (m *Member) TableName() string {
	return memberTable.Name
}

func (m *Member) IDColumn() string {
	return memberTable.PrimaryKey
}

// InsertValues fails with ErrTransientReference while the team has no id
func (m *Member) InsertValues() ([]string, []interface{}, error) {
	var username interface{}
	if m.username.Valid {
		username = m.username.String
	}

	var teamID interface{}
	switch {
	case m.team != nil && m.team.id == 0:
		return nil, nil, fmt.Errorf("%w: %s references unsaved %s", builder.ErrTransientReference, m, m.team)
	case m.team != nil:
		teamID = m.team.id
	case m.teamID.Valid:
		teamID = m.teamID.Int64
	}

	return []string{"username", "age", "team_id"}, []interface{}{username, m.age, teamID}, nil
}

func (m *Member) Assign(id int64, s builder.Session) {
	m.id = id
	m.session = s
	if m.team != nil {
		m.teamID = sql.NullInt64{Int64: m.team.id, Valid: true}
	}
}

var memberTable = &builder.Table[*Member]{
	Name:       "member",
	PrimaryKey: "member_id",
	Columns:    []string{"member_id", "username", "age", "team_id"},
	Scan: func(s builder.Session, scan func(dest ...interface{}) error) (*Member, error) {
		m := &Member{session: s}
		if err := scan(&m.id, &m.username, &m.age, &m.teamID); err != nil {
			return nil, err
		}
		return m, nil
	},
	ID: func(m *Member) int64 { return m.id },
}
