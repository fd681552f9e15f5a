package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voluntr/internal/platform/postgres"
)

var errNoDatabase = errors.New("DATABASE_URL is required")

func migrateCmd(c *cli) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Database.URL == "" {
				return errNoDatabase
			}
			db, err := postgres.Open(cmd.Context(), c.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if down {
				return postgres.MigrateDown(db, c.logger)
			}
			if err := postgres.Migrate(db, c.logger); err != nil {
				return err
			}
			version, dirty, err := postgres.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every applied migration")
	return cmd
}
