package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/study/querydsl-go/builder"
	"github.com/study/querydsl-go/entity"
	"github.com/study/querydsl-go/internal/config"
	"github.com/study/querydsl-go/persistence"
)

type reportOptions struct {
	offset int
	limit  int
	team   string
	watch  bool
}

func newReportCmd() *cobra.Command {
	var opts reportOptions
	report := &cobra.Command{
		Use:   "report",
		Short: "Run the sample queries against the current data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := reportOnce(cmd.Context(), cmd.OutOrStdout(), cfg, opts); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			if cfg.Path() == "" {
				return fmt.Errorf("--watch needs a configuration file")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			w := cmd.OutOrStdout()
			err = config.Watch(ctx, cfg.Path(), func(next *config.Config, err error) {
				if err != nil {
					fmt.Fprintf(w, "%s %v\n", Warning("Reload failed:"), err)
					return
				}
				if verbose {
					next.Log = cfg.Log
				}
				fmt.Fprintln(w, Info("Configuration changed, running again"))
				if err := reportOnce(ctx, w, next, opts); err != nil {
					fmt.Fprintf(w, "%s %v\n", Warning("Report failed:"), err)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, Info("Watching "+cfg.Path()+", press Ctrl+C to stop"))
			<-ctx.Done()
			return nil
		},
	}
	report.Flags().IntVar(&opts.offset, "offset", 1, "First row of the members page")
	report.Flags().IntVar(&opts.limit, "limit", 2, "Size of the members page")
	report.Flags().StringVar(&opts.team, "team", "teamA", "Team whose members are listed through the join")
	report.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Run again whenever the configuration file changes")
	return report
}

func reportOnce(ctx context.Context, w io.Writer, cfg *config.Config, opts reportOptions) error {
	factory, err := openFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer factory.Close()

	em, err := factory.CreateEntityManager(ctx)
	if err != nil {
		return err
	}
	// read only
	defer em.Rollback(ctx)

	r := &reporter{w: w, em: em, opts: opts}
	steps := []func(ctx context.Context) error{
		r.members,
		r.page,
		r.aggregates,
		r.teamAverages,
		r.teamMembers,
	}
	d := factory.Detector()
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
		// alerts belong to the section just printed
		for _, alert := range d.Check() {
			fmt.Fprintln(w, Warning(alert.String()))
		}
		d.Reset()
	}
	return nil
}

type reporter struct {
	w    io.Writer
	em   *persistence.EntityManager
	opts reportOptions
}

func (r *reporter) table(title string, header table.Row) table.Writer {
	fmt.Fprintln(r.w, Title(title))
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

// members lists everyone by age descending, unnamed members last, loading
// each team lazily
func (r *reporter) members(ctx context.Context) error {
	m := entity.QMember
	members, err := builder.SelectFrom(r.em, m).
		OrderBy(m.Age.Desc(), m.Username.Asc().NullsLast()).
		Fetch(ctx)
	if err != nil {
		return err
	}

	t := r.table("Members", table.Row{"ID", "Username", "Age", "Team"})
	for _, member := range members {
		team, err := member.Team(ctx)
		if err != nil {
			return err
		}
		teamName := ""
		if team != nil {
			teamName = team.Name()
		}
		t.AppendRow(table.Row{member.ID(), displayName(member), member.Age(), teamName})
	}
	t.Render()
	return nil
}

func (r *reporter) page(ctx context.Context) error {
	m := entity.QMember
	results, err := builder.SelectFrom(r.em, m).
		OrderBy(m.Username.Desc()).
		Offset(r.opts.offset).
		Limit(r.opts.limit).
		FetchResults(ctx)
	if err != nil {
		return err
	}

	t := r.table("Page by username descending", table.Row{"ID", "Username", "Age"})
	for _, member := range results.Results {
		t.AppendRow(table.Row{member.ID(), displayName(member), member.Age()})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("offset %d limit %d", results.Offset, results.Limit), fmt.Sprintf("total %d", results.Total)})
	t.Render()
	return nil
}

func (r *reporter) aggregates(ctx context.Context) error {
	m := entity.QMember
	count, sum, avg := m.Count(), m.Age.Sum(), m.Age.Avg()
	maxAge, minAge := m.Age.Max(), m.Age.Min()

	row, err := builder.SelectTuple(r.em, count, sum, avg, maxAge, minAge).From(m).FetchOne(ctx)
	if err != nil {
		return err
	}

	t := r.table("Age aggregates", table.Row{"Count", "Sum", "Avg", "Max", "Min"})
	t.AppendRow(table.Row{
		builder.Get(row, count),
		builder.Get(row, sum),
		fmt.Sprintf("%.2f", builder.Get(row, avg)),
		builder.Get(row, maxAge),
		builder.Get(row, minAge),
	})
	t.Render()
	return nil
}

func (r *reporter) teamAverages(ctx context.Context) error {
	m, team := entity.QMember, entity.QTeam
	avg := m.Age.Avg()

	rows, err := builder.SelectTuple(r.em, team.Name, avg).
		From(m).
		Join(m.Team, team).
		GroupBy(team.Name).
		OrderBy(team.Name.Asc()).
		Fetch(ctx)
	if err != nil {
		return err
	}

	t := r.table("Average age per team", table.Row{"Team", "Avg"})
	for _, row := range rows {
		t.AppendRow(table.Row{builder.Get(row, team.Name), fmt.Sprintf("%.2f", builder.Get(row, avg))})
	}
	t.Render()
	return nil
}

func (r *reporter) teamMembers(ctx context.Context) error {
	m, team := entity.QMember, entity.QTeam
	members, err := builder.SelectFrom(r.em, m).
		Join(m.Team, team).
		Where(team.Name.Eq(r.opts.team)).
		OrderBy(m.ID.Asc()).
		Fetch(ctx)
	if err != nil {
		return err
	}

	t := r.table("Members of "+r.opts.team, table.Row{"ID", "Username", "Age"})
	for _, member := range members {
		t.AppendRow(table.Row{member.ID(), displayName(member), member.Age()})
	}
	t.Render()
	return nil
}

func displayName(m *entity.Member) string {
	if !m.HasUsername() {
		return Info("null")
	}
	return m.Username()
}
