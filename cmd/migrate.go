package cmd

import (
	"errors"
	"takabot/internal/adapters/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errMissingDatabase = errors.New("database.url is not configured")

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			url := viper.GetString("database.url")
			if url == "" {
				return errMissingDatabase
			}

			return store.MigrateUp(url)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (default: 1 step)",
		RunE: func(_ *cobra.Command, _ []string) error {
			url := viper.GetString("database.url")
			if url == "" {
				return errMissingDatabase
			}

			return store.MigrateDown(url, steps)
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of steps to roll back")
	cmd.AddCommand(down)

	return cmd
}
