// Package cmd is the querydsl command line: schema migrations, the sample
// data set and a report of the study queries.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	querydsl "github.com/study/querydsl-go"
	"github.com/study/querydsl-go/internal/config"
	"github.com/study/querydsl-go/internal/logger"
	"github.com/study/querydsl-go/internal/migrations"
	"github.com/study/querydsl-go/persistence"
)

var (
	configFile string
	verbose    bool
)

// Execute runs the CLI application
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// NewRootCmd builds the command tree; flags are reset on every call
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "querydsl",
		Short:         "Type-safe queries over the member/team schema",
		Version:       querydsl.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default: querydsl.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode (log every statement)")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newReportCmd())
	return root
}

// loadConfig reads --config, falling back to querydsl.toml and then to the
// local SQLite default when no file exists
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		if configFile != "" || !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		cfg = config.Default()
	}
	if verbose {
		cfg.Log = []string{"query", "info", "warn", "error"}
	}
	return cfg, nil
}

// open loads the configuration and opens the factory it describes
func open(ctx context.Context) (*config.Config, *persistence.EntityManagerFactory, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	factory, err := openFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, factory, nil
}

// openFactory gives verbose runs zap's development logger, which adds the
// caller to every entity manager line
func openFactory(ctx context.Context, cfg *config.Config) (*persistence.EntityManagerFactory, error) {
	var opts []persistence.Option
	if verbose {
		z, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		opts = append(opts, persistence.WithLogger(logger.NewZapLogger(z)))
	}
	return persistence.Open(ctx, cfg, opts...)
}

func newMigrator(cfg *config.Config, factory *persistence.EntityManagerFactory) (*migrations.Migrator, error) {
	m, err := migrations.New(factory.DB().SQLDB(), factory.Provider(), cfg.Migrations.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migrations: %w", err)
	}
	return m, nil
}
