package main

import (
	"github.com/spf13/cobra"

	"github.com/framereel/framereel-agent/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dataDirFlag string

	ctx := newCommandContext(&configFlag, &dataDirFlag)

	rootCmd := &cobra.Command{
		Use:           "framereel",
		Short:         "Local GIF studio agent",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (database, lock, exports)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newEncodeCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
