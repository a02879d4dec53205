package backfill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/media"
)

// Entry is one file inside the scanned window
type Entry struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Plan partitions the files of a directory that fall inside a range
type Plan struct {
	Dir       string
	Range     Range
	Processed []Entry
	Pending   []Entry
}

// Report summarizes a backfill run. Skipped counts files the routine
// declined and files left over when the run was interrupted.
type Report struct {
	Plan      Plan
	DryRun    bool
	Succeeded int
	Failed    int
	Skipped   int
}

// Plan lists dir (not recursively) and sorts its in-range files into
// processed and pending, each oldest first
func (s *implScanner) Plan(ctx context.Context, dir string, r Range) (Plan, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Plan{}, fmt.Errorf("list %s: %w", abs, err)
	}

	plan := Plan{Dir: abs, Range: r}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(abs, de.Name())
		if !s.filter.Accept(path) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			s.logger.Warn(ctx, "Cannot stat %s: %v", path, err)
			continue
		}
		if !r.Contains(info.ModTime()) {
			continue
		}
		e := Entry{Path: path, ModTime: info.ModTime(), Size: info.Size()}
		if s.ledger.IsProcessed(path) {
			plan.Processed = append(plan.Processed, e)
		} else {
			plan.Pending = append(plan.Pending, e)
		}
	}
	sortOldestFirst(plan.Processed)
	sortOldestFirst(plan.Pending)
	return plan, nil
}

// Run processes the pending files of the plan one at a time. A failed or
// panicking file is counted and the run moves on.
func (s *implScanner) Run(ctx context.Context, dir string, r Range, dryRun bool) (Report, error) {
	plan, err := s.Plan(ctx, dir, r)
	if err != nil {
		return Report{}, err
	}
	report := Report{Plan: plan, DryRun: dryRun}
	s.logger.Info(ctx, "Backfill %s (%s): %d in range, %d already processed, %d to process",
		plan.Dir, r, len(plan.Processed)+len(plan.Pending), len(plan.Processed), len(plan.Pending))
	if dryRun {
		return report, nil
	}

	for i, e := range plan.Pending {
		if ctx.Err() != nil {
			left := len(plan.Pending) - i
			report.Skipped += left
			s.logger.Warn(ctx, "Backfill interrupted, %d files left", left)
			return report, ctx.Err()
		}
		s.logger.Info(ctx, "Backfill %d/%d: %s", i+1, len(plan.Pending), e.Path)
		switch err := s.runOne(ctx, e.Path); {
		case err == nil:
			report.Succeeded++
		case errors.Is(err, media.ErrSkipped):
			report.Skipped++
			s.logger.Info(ctx, "Backfill skipped %s: %v", e.Path, err)
		default:
			report.Failed++
			s.logger.Error(ctx, "Backfill failed for %s: %v", e.Path, err)
		}
		if i < len(plan.Pending)-1 {
			if err := s.sleep(ctx, s.interFileDelay); err != nil {
				report.Skipped += len(plan.Pending) - i - 1
				return report, err
			}
		}
	}
	s.logger.Info(ctx, "Backfill complete: %d succeeded, %d failed, %d skipped", report.Succeeded, report.Failed, report.Skipped)
	return report, nil
}

func (s *implScanner) runOne(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()
	return s.process(ctx, path)
}

func sortOldestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
}
