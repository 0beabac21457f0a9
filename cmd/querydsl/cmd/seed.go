package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/study/querydsl-go/entity"
	"github.com/study/querydsl-go/persistence"
)

func newSeedCmd() *cobra.Command {
	var (
		unnamed bool
		migrate bool
	)
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert teamA with member1..3 and teamB with member4..6",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, factory, err := open(ctx)
			if err != nil {
				return err
			}
			defer factory.Close()

			if migrate {
				m, err := newMigrator(cfg, factory)
				if err != nil {
					return err
				}
				if err := m.Up(ctx); err != nil {
					return err
				}
			}

			em, err := factory.CreateEntityManager(ctx)
			if err != nil {
				return err
			}
			defer em.Close(ctx)

			teams, members, err := persistSample(em, unnamed)
			if err != nil {
				return err
			}
			if err := em.Commit(ctx); err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Entity", "ID", "Value"})
			for _, team := range teams {
				t.AppendRow(table.Row{"team", team.ID(), team.Name()})
			}
			for _, m := range members {
				t.AppendRow(table.Row{"member", m.ID(), m.String()})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d teams, %d members\n", Success("Seeded"), len(teams), len(members))
			return nil
		},
	}
	seed.Flags().BoolVar(&unnamed, "unnamed", false, "Also insert a member without a username")
	seed.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations first")
	return seed
}

// persistSample queues the teams and then member1..6, aged 10 to 60
func persistSample(em *persistence.EntityManager, unnamed bool) ([]*entity.Team, []*entity.Member, error) {
	teamA, teamB := entity.NewTeam("teamA"), entity.NewTeam("teamB")
	var members []*entity.Member
	for i := 1; i <= 6; i++ {
		team := teamA
		if i > 3 {
			team = teamB
		}
		members = append(members, entity.NewMember(fmt.Sprintf("member%d", i), i*10, team))
	}
	if unnamed {
		members = append(members, entity.NewUnnamedMember(100, nil))
	}

	teams := []*entity.Team{teamA, teamB}
	for _, team := range teams {
		if err := em.Persist(team); err != nil {
			return nil, nil, err
		}
	}
	for _, m := range members {
		if err := em.Persist(m); err != nil {
			return nil, nil, err
		}
	}
	return teams, members, nil
}
