package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/study/querydsl-go/internal/config"
	"github.com/study/querydsl-go/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the team and member schema",
	}
	migrate.AddCommand(
		migrationCmd("up", "Apply every pending migration", func(cmd *cobra.Command, m *migrations.Migrator) error {
			if err := m.Up(cmd.Context()); err != nil {
				return err
			}
			return printVersion(cmd, m, "Schema is up to date")
		}),
		migrationCmd("down", "Roll back the most recent migration", func(cmd *cobra.Command, m *migrations.Migrator) error {
			if err := m.Down(cmd.Context()); err != nil {
				return err
			}
			return printVersion(cmd, m, "Rolled back")
		}),
		migrationCmd("status", "List migrations and whether they are applied", func(cmd *cobra.Command, m *migrations.Migrator) error {
			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), statuses)
			return nil
		}),
		migrationCmd("health", "Ping the database and read the schema version", func(cmd *cobra.Command, m *migrations.Migrator) error {
			check, err := m.CheckHealth(cmd.Context(), 5*time.Second)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Warning(check.Status), check.Error)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %d, %s, %d open connections\n",
				Success(check.Status), check.SchemaVersion, check.ResponseTime.Round(time.Microsecond), check.OpenConnections)
			return nil
		}),
	)
	return migrate
}

// migrationCmd opens the configured database around run
func migrationCmd(use, short string, run func(cmd *cobra.Command, m *migrations.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, factory, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer factory.Close()

			printDatasource(cmd.OutOrStdout(), cfg)
			m, err := newMigrator(cfg, factory)
			if err != nil {
				return err
			}
			return run(cmd, m)
		},
	}
}

func printVersion(cmd *cobra.Command, m *migrations.Migrator, msg string) error {
	version, err := m.Version(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Success(msg), Info(fmt.Sprintf("(version %d)", version)))
	return nil
}

func renderStatus(w io.Writer, statuses []migrations.Status) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Migration", "Applied"})
	for _, s := range statuses {
		applied := Warning("pending")
		if s.Applied {
			applied = Success("applied")
		}
		t.AppendRow(table.Row{s.Version, Title(migrationName(s.Source)), applied})
	}
	t.Render()
}

func migrationName(source string) string {
	if i := strings.LastIndex(source, "/"); i >= 0 {
		return source[i+1:]
	}
	return source
}

// printDatasource names the provider and database without credentials
func printDatasource(w io.Writer, cfg *config.Config) {
	name := cfg.GetDatabaseURL()
	if i := strings.LastIndex(name, "@"); i >= 0 {
		name = name[i+1:]
	} else if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	fmt.Fprintf(w, "%s %s database %q\n", Info("Datasource:"), cfg.GetProvider(), name)
}
