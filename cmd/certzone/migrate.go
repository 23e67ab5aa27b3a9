package main

import (
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and seed reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pool, err := store.Connect(ctx, root.cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info(ctx, "migrations applied")
			return nil
		},
	}
}
