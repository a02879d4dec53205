package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newDrainCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Process every unprocessed recording in the watch directories, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := newPipeline(runCtx, cfg)
			if err != nil {
				return err
			}
			defer p.close()

			n, err := p.coordinator.DrainBacklog(runCtx)
			if err != nil {
				return err
			}
			idx := p.ledger.Index()
			p.logger.Info(runCtx, "Drained %d files; %d failures on record", n, len(idx.FailedFiles))
			return nil
		},
	}
}
