package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/summarai/internal/ledger"
	"github.com/nguyentantai21042004/summarai/internal/speaker"
	"github.com/nguyentantai21042004/summarai/pkg/executor"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showProfiles bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and files whose last attempt failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			l := newLedger(cfg, "", log)
			idx, err := l.LoadIndex(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderStatus(out, l.Path(), idx)

			if !showProfiles {
				return nil
			}
			matcher := newMatcher(cfg, executor.New(), log)
			if matcher == nil {
				return fmt.Errorf("speaker.script_path is not configured")
			}
			return renderProfiles(cmd.Context(), out, matcher)
		},
	}

	cmd.Flags().BoolVar(&showProfiles, "profiles", false, "Also list enrolled voice profiles")
	return cmd
}

func renderStatus(w io.Writer, path string, idx ledger.Index) {
	fmt.Fprintf(w, "Ledger: %s\n", path)
	fmt.Fprintf(w, "Processed: %d paths, %d legacy names\n", len(idx.BySourcePath), len(idx.LegacyNames))
	fmt.Fprintf(w, "Failed: %d\n", len(idx.FailedFiles))
	if len(idx.FailedFiles) == 0 {
		return
	}

	keys := make([]string, 0, len(idx.FailedFiles))
	for k := range idx.FailedFiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		f := idx.FailedFiles[k]
		rows = append(rows, []string{
			k,
			strconv.Itoa(f.AttemptNumber),
			f.LastAttemptAt.Local().Format("2006-01-02 15:04"),
			truncate(f.Error, 80),
		})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderRows(w, []string{"File", "Attempts", "Last attempt", "Error"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
}

func renderProfiles(ctx context.Context, w io.Writer, m speaker.Matcher) error {
	profiles, err := m.List(ctx)
	if err != nil {
		return fmt.Errorf("list voice profiles: %w", err)
	}
	fmt.Fprintf(w, "\nVoice profiles: %d\n", len(profiles))
	if len(profiles) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		name := p.DisplayName
		if name == "" {
			name = p.Name
		}
		rows = append(rows, []string{p.ID, name, strconv.FormatFloat(p.Duration, 'f', 1, 64) + "s", p.CreatedAt})
	}
	fmt.Fprintln(w, renderRows(w, []string{"ID", "Name", "Sample", "Created"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}
