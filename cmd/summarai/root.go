package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	watchCmd := newWatchCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "summarai",
		Short:         "Watch folders of recordings and turn them into transcripts and summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          watchCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(watchCmd.Flags())
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(newBackfillCommand(ctx))
	rootCmd.AddCommand(newDrainCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))

	return rootCmd
}
