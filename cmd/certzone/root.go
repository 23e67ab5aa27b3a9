package main

import (
	"github.com/ougirez/certzone/internal/pkg/config"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "certzone",
		Short:         "Loads Cert zone-of-responsibility XML documents into the database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.LogLevel, cfg.LogDevelopment); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the config file (default ./certzone.yaml)")

	cmd.AddCommand(
		newParseCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
	)

	return cmd
}
