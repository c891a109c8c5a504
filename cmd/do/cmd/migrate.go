package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/config"
	"github.com/mariaangelps/490-The-Team/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", func(ctx context.Context, conn *sqlx.DB, driver string) error {
			return db.RunMigrations(ctx, conn.DB, driver)
		}),
		migrateStep("down", "Roll back the latest migration", func(ctx context.Context, conn *sqlx.DB, driver string) error {
			return db.MigrateDown(ctx, conn.DB, driver)
		}),
		migrateStep("status", "Print the applied migration version", func(ctx context.Context, conn *sqlx.DB, driver string) error {
			version, err := db.Version(ctx, conn.DB, driver)
			if err != nil {
				return err
			}
			fmt.Printf("driver=%s version=%d\n", driver, version)
			return nil
		}),
	)
	return cmd
}

func migrateStep(use, short string, run func(ctx context.Context, conn *sqlx.DB, driver string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			conn, err := db.Init(cfg.DBDriver, cfg.DBConnection, cfg.DBTimeout)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()

			return run(cmd.Context(), conn, cfg.DBDriver)
		},
	}
}
