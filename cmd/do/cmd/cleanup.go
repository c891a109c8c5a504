package cmd

import (
	"context"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/app"
	"github.com/mariaangelps/490-The-Team/internal/config"
	"github.com/spf13/cobra"
)

func CleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired sessions and password reset tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = a.Close(ctx)
			}()

			return a.Cleanup(cmd.Context())
		},
	}
}
