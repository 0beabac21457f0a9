package entity

import (
	"github.com/study/querydsl-go/builder"
)

// MemberPath is the query path of Member under one alias
type MemberPath struct {
	*builder.EntityPath[*Member]
	ID       builder.NumberPath[int64]
	Username builder.StringPath
	Age      builder.NumberPath[int]
	Team     builder.RelationPath
}

// NewMemberPath binds Member to alias, for self joins or a second occurrence
func NewMemberPath(alias string) *MemberPath {
	p := &MemberPath{EntityPath: builder.NewEntityPath(memberTable, alias)}
	p.ID = p.IDPath()
	p.Username = builder.NewStringPath(p, "username")
	p.Age = builder.NewNumberPath[int](p, "age")
	p.Team = builder.NewRelationPath(p, "team_id", teamTable.Name, teamTable.PrimaryKey)
	return p
}

// TeamPath is the query path of Team under one alias
type TeamPath struct {
	*builder.EntityPath[*Team]
	ID   builder.NumberPath[int64]
	Name builder.StringPath
}

func NewTeamPath(alias string) *TeamPath {
	p := &TeamPath{EntityPath: builder.NewEntityPath(teamTable, alias)}
	p.ID = p.IDPath()
	p.Name = builder.NewStringPath(p, "name")
	return p
}

// Default paths, aliased by table name
var (
	QMember = NewMemberPath("member")
	QTeam   = NewTeamPath("team")
)
