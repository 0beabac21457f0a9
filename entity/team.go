package entity

import (
	"context"
	"fmt"

	"github.com/study/querydsl-go/builder"
)

// Team groups members. Its member collection is the inverse side of
// Member.Team: it is kept in memory for teams created in this process and
// loaded from member.team_id for teams read from the database.
type Team struct {
	id      int64
	name    string
	members []*Member
	// loaded is false only for teams read from the database whose members
	// have not been fetched yet
	loaded  bool
	session builder.Session
}

// NewTeam creates a transient team; it gets its id when flushed
func NewTeam(name string) *Team {
	return &Team{name: name, loaded: true}
}

func (t *Team) ID() int64 {
	return t.id
}

func (t *Team) Name() string {
	return t.name
}

// Members returns the team's members, loading them on first access
func (t *Team) Members(ctx context.Context) ([]*Member, error) {
	if !t.loaded {
		if t.session == nil {
			return nil, fmt.Errorf("team %d: members not loaded and no session attached", t.id)
		}
		members, err := builder.SelectFrom(t.session, QMember).
			Where(QMember.Team.FK().Eq(t.id)).
			OrderBy(QMember.ID.Asc()).
			Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load members of team %d: %w", t.id, err)
		}
		for _, m := range members {
			m.team = t
		}
		t.members = members
		t.loaded = true
	}
	out := make([]*Member, len(t.members))
	copy(out, t.members)
	return out, nil
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.id, t.name)
}

func (t *Team) addMember(m *Member) {
	if t.loaded {
		t.members = append(t.members, m)
	}
}

func (t *Team) removeMember(m *Member) {
	for i, x := range t.members {
		if x == m {
			t.members = append(t.members[:i], t.members[i+1:]...)
			return
		}
	}
}

// TableName, IDColumn, InsertValues and Assign let an EntityManager persist a team

func (t *Team) TableName() string {
	return teamTable.Name
}

func (t *Team) IDColumn() string {
	return teamTable.PrimaryKey
}

func (t *Team) InsertValues() ([]string, []interface{}, error) {
	return []string{"name"}, []interface{}{t.name}, nil
}

func (t *Team) Assign(id int64, s builder.Session) {
	t.id = id
	t.session = s
}

var teamTable = &builder.Table[*Team]{
	Name:       "team",
	PrimaryKey: "team_id",
	Columns:    []string{"team_id", "name"},
	Scan: func(s builder.Session, scan func(dest ...interface{}) error) (*Team, error) {
		t := &Team{session: s}
		if err := scan(&t.id, &t.name); err != nil {
			return nil, err
		}
		return t, nil
	},
	ID: func(t *Team) int64 { return t.id },
}
