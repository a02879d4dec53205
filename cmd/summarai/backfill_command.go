package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/summarai/internal/backfill"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill <" + backfill.DateLayout + "[:" + backfill.DateLayout + "]>",
		Short: "Process recordings modified within a date range",
		Long: "Process the recordings in a directory whose modification date falls in the range.\n" +
			"A single date runs from that day until now; START:END covers both days in full.",
		Example: "  summarai backfill 7-1-25\n  summarai backfill 4-1-25:5-31-25 --dir ~/Recordings --dry-run",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := backfill.ParseRange(args[0], time.Now())
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Watch.Directories[0].Path
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := newPipeline(runCtx, cfg)
			if err != nil {
				return err
			}
			defer p.close()

			scanner := p.backfillScanner()
			plan, err := scanner.Plan(runCtx, dir, r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printPlan(out, plan)
			if dryRun || len(plan.Pending) == 0 {
				return nil
			}

			report, err := scanner.Run(runCtx, dir, r, false)
			fmt.Fprintf(out, "\nSucceeded: %d  Failed: %d  Skipped: %d\n", report.Succeeded, report.Failed, report.Skipped)
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to scan (defaults to the first watch directory)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be processed without processing it")
	return cmd
}

func printPlan(w io.Writer, plan backfill.Plan) {
	fmt.Fprintf(w, "%s, %s\n", plan.Dir, plan.Range)
	fmt.Fprintf(w, "%d already processed, %d to process\n", len(plan.Processed), len(plan.Pending))
	if len(plan.Pending) == 0 {
		return
	}

	rows := make([][]string, 0, len(plan.Pending))
	for i, e := range plan.Pending {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.ModTime.Format("2006-01-02 15:04"),
			formatBytes(e.Size),
			e.Path,
		})
	}
	fmt.Fprintln(w, renderRows(w, []string{"#", "Modified", "Size", "File"}, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
}
