package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/app"
)

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending schema migrations to the configured SQLite or Postgres database.
Use --status to list applied and pending migrations without changing anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(2 * time.Minute)
			defer cancel()

			// Migrations run explicitly below.
			cfg.Database.AutoMigrate = false
			cfg.Database.Seed = false

			svc, err := openServices(ctx, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			if status {
				st, err := svc.Migrations.Status(ctx)
				if err != nil {
					return err
				}
				if outputJSON {
					printJSON(st)
					return nil
				}
				ui.Section("Migrations")
				ui.KeyValue("driver", cfg.Database.Driver)
				ui.KeyValue("applied", len(st.Applied))
				ui.KeyValue("pending", len(st.Pending))
				for _, name := range st.Pending {
					ui.Step("pending %s", name)
				}
				return nil
			}

			applied, err := svc.Migrations.Migrate(ctx)
			if err != nil {
				return err
			}

			if outputJSON {
				printJSON(map[string]any{"applied": applied})
				return nil
			}
			if len(applied) == 0 {
				ui.Success("Schema is up to date")
				return nil
			}
			for _, name := range applied {
				ui.Step("applied %s", name)
			}
			ui.Success("Applied %d migrations on %s", len(applied), cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show migration status only")
	return cmd
}

// newSeedCmd creates the seed subcommand.
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample Samsung catalog",
		Long:  `Seed applies pending migrations and inserts the sample catalog. Existing model names are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(2 * time.Minute)
			defer cancel()

			cfg.Database.AutoMigrate = true
			cfg.Database.Seed = true

			svc, err := openServices(ctx, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := app.InvalidateSharedAnswers(ctx, cfg); err != nil {
				logger.WithOperation("seed").Warn().Err(err).Msg("Answer cache invalidation failed")
			}

			count, err := svc.Phones.Count(ctx)
			if err != nil {
				return err
			}

			if outputJSON {
				printJSON(map[string]int{"phones": count})
				return nil
			}
			ui.Success("Seed applied, catalog has %d phones", count)
			return nil
		},
	}
}
