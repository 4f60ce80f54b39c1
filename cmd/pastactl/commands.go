package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasta-logger/internal/config"
	"pasta-logger/internal/cooking"
	"pasta-logger/internal/database"
	"pasta-logger/internal/repository"
	"pasta-logger/internal/service"
	"pasta-logger/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pastactl",
		Short: "Operate the pasta logger backend",
		Long: `pastactl runs maintenance tasks against the pasta logger database:
applying the schema, loading reference data and checking that the
backend is awake.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if offline(cmd) {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			a.logger = config.NewLogger(cfg.Logger)
			return nil
		},
	}
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "deadline for database operations")

	root.AddCommand(
		a.migrateCmd(),
		a.schemaCmd(),
		a.seedCmd(),
		a.pingCmd(),
		a.saltCmd(),
	)
	return root
}

// offline reports whether cmd runs without configuration.
func offline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["offline"] == "true" || c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return database.NewPool(ctx, a.cfg.Database, a.logger)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			pool, err := a.connect(ctx)
			if err != nil {
				return a.explain(err)
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool, a.logger); err != nil {
				return a.explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "schema",
		Short:       "Print the SQL schema",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), database.Schema())
			return err
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load recipes, pasta kinds and cheeses from a YAML file",
		Long: `seed reads a YAML file of reference data and creates the rows that do
not exist yet. Existing rows are matched by name (recipes), by name and
manufacturer (cheeses) or by brand and thickness (pasta kinds) and left
untouched. A thickness of zero counts as no thickness.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadSeedFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d recipes, %d pasta kinds, %d cheeses\n",
					args[0], len(file.Recipes), len(file.PastaKinds), len(file.Cheeses))
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			pool, err := a.connect(ctx)
			if err != nil {
				return a.explain(err)
			}
			defer pool.Close()

			repos := repository.New(pool, a.logger)
			store := storage.New(ctx, a.cfg.Storage, a.cfg.Server.BaseURL, a.cfg.Auth.JWTSecret, a.logger)
			masters := service.NewMasterService(repos.Recipes, repos.PastaKinds, repos.Cheeses, store, a.cfg.Storage.SignedURLTTL, a.logger)

			result, err := file.Apply(ctx, masters)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file without touching the database")
	return cmd
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			start := time.Now()
			pool, err := a.connect(ctx)
			if err != nil {
				return a.explain(err)
			}
			defer pool.Close()

			var name string
			if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&name); err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s in %s\n", name, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func (a *app) saltCmd() *cobra.Command {
	var water, salt float64

	cmd := &cobra.Command{
		Use:         "salt",
		Short:       "Compute the salt percentage of the boiling water",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := cooking.SaltPercentage(water, salt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.1f%%\n", pct)
			return nil
		},
	}
	cmd.Flags().Float64Var(&water, "water", 0, "water in litres")
	cmd.Flags().Float64Var(&salt, "salt", 0, "salt in grams")
	_ = cmd.MarkFlagRequired("water")
	_ = cmd.MarkFlagRequired("salt")
	return cmd
}

// errBackendPaused is returned when the database looks suspended rather
// than broken.
var errBackendPaused = errors.New("the backend appears to be paused")

func (a *app) explain(err error) error {
	if !database.IsUnavailable(err) {
		return err
	}
	if a.cfg != nil && a.cfg.Backend.DashboardURL != "" {
		return fmt.Errorf("%w, resume it at %s: %v", errBackendPaused, a.cfg.Backend.DashboardURL, err)
	}
	return fmt.Errorf("%w: %v", errBackendPaused, err)
}
