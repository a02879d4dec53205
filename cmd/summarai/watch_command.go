package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/summarai/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipBacklog bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the configured directories and process new recordings (default)",
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
			log := p.logger

			w, err := watcher.New(watcher.Options{
				Roots:              cfg.WatchPaths(),
				Filter:             p.filter,
				StabilityThreshold: cfg.StabilityThreshold(),
				PollInterval:       cfg.PollInterval(),
			}, p.coordinator.OnArrival, log)
			if err != nil {
				return err
			}
			defer w.Stop()

			errChan := make(chan error, 1)
			go func() {
				errChan <- w.Start(runCtx)
			}()

			log.Info(runCtx, "Watching %d directories, output %s. Press Ctrl+C to stop", len(cfg.Watch.Directories), cfg.Paths.Output)
			for _, dir := range cfg.Watch.Directories {
				log.Info(runCtx, "  %s (service %s)", dir.Path, dir.Service)
			}

			if !skipBacklog {
				if _, err := p.coordinator.DrainBacklog(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn(runCtx, "Backlog drain: %v", err)
				}
			}

			select {
			case <-runCtx.Done():
				log.Info(runCtx, "Shutdown signal received")
			case err := <-errChan:
				if err != nil {
					return err
				}
			}

			w.Stop()
			// a file already handed to the router finishes before exit
			if err := p.coordinator.Wait(context.Background()); err != nil {
				log.Warn(runCtx, "Waiting for in-flight file: %v", err)
			}
			log.Info(runCtx, "Pipeline stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipBacklog, "skip-backlog", false, "Do not process files that arrived while the pipeline was stopped")
	return cmd
}
