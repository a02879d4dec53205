package backfill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
)

type fakeLedger map[string]bool

func (f fakeLedger) IsProcessed(path string) bool { return f[filepath.Base(path)] }

func writeAt(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return p
}

func setup(t *testing.T) (string, Range) {
	t.Helper()
	dir := t.TempDir()
	day := func(d int) time.Time { return time.Date(2025, 4, d, 10, 0, 0, 0, time.Local) }

	writeAt(t, dir, "late.m4a", day(20))
	writeAt(t, dir, "early.m4a", day(3))
	writeAt(t, dir, "middle.mp3", day(10))
	writeAt(t, dir, "done.m4a", day(5))
	writeAt(t, dir, "outside.m4a", time.Date(2025, 3, 31, 23, 0, 0, 0, time.Local))
	writeAt(t, dir, "notes.txt", day(4))
	writeAt(t, dir, "busy.m4a.processing", day(4))
	writeAt(t, dir, ".hidden.m4a", day(4))
	if err := os.Mkdir(filepath.Join(dir, "nested.m4a"), 0755); err != nil {
		t.Fatal(err)
	}

	r := Range{
		Start: time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2025, 4, 30, 23, 59, 59, 0, time.Local),
	}
	return dir, r
}

func newTestScanner(process ProcessFunc) *implScanner {
	filter := media.NewFilter([]string{".m4a", ".mp3"}, []string{"."}, nil, nil)
	s := New(filter, fakeLedger{"done.m4a": true}, process, 5*time.Millisecond, logger.New("error")).(*implScanner)
	return s
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.Base(e.Path)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlan(t *testing.T) {
	dir, r := setup(t)
	s := newTestScanner(nil)

	plan, err := s.Plan(context.Background(), dir, r)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if got := names(plan.Pending); !equal(got, []string{"early.m4a", "middle.mp3", "late.m4a"}) {
		t.Errorf("Pending = %v, want oldest first", got)
	}
	if got := names(plan.Processed); !equal(got, []string{"done.m4a"}) {
		t.Errorf("Processed = %v", got)
	}
}

func TestPlanMissingDir(t *testing.T) {
	s := newTestScanner(nil)
	if _, err := s.Plan(context.Background(), filepath.Join(t.TempDir(), "nope"), Range{}); err == nil {
		t.Error("Plan() on a missing directory should fail")
	}
}

func TestRunDryRun(t *testing.T) {
	dir, r := setup(t)
	s := newTestScanner(func(ctx context.Context, path string) error {
		t.Errorf("dry run processed %s", path)
		return nil
	})

	report, err := s.Run(context.Background(), dir, r, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.DryRun || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Plan.Pending) != 3 {
		t.Errorf("Pending = %d, want 3", len(report.Plan.Pending))
	}
}

func TestRunProcessesOldestFirstAndContinuesAfterFailure(t *testing.T) {
	dir, r := setup(t)
	var order []string
	s := newTestScanner(func(ctx context.Context, path string) error {
		order = append(order, filepath.Base(path))
		if filepath.Base(path) == "early.m4a" {
			return errors.New("quota exceeded")
		}
		return nil
	})
	var delays []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	report, err := s.Run(context.Background(), dir, r, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !equal(order, []string{"early.m4a", "middle.mp3", "late.m4a"}) {
		t.Errorf("order = %v", order)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("Succeeded = %d, Failed = %d, want 2 and 1", report.Succeeded, report.Failed)
	}
	if len(delays) != 2 || delays[0] != 5*time.Millisecond {
		t.Errorf("delays = %v, want two 5ms waits", delays)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	dir, r := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := newTestScanner(func(ctx context.Context, path string) error {
		calls++
		cancel()
		return nil
	})

	report, err := s.Run(ctx, dir, r, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("process calls = %d, want 1", calls)
	}
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}
}

func TestRunCountsPanicsAndSkips(t *testing.T) {
	dir, r := setup(t)
	var order []string
	s := newTestScanner(func(ctx context.Context, path string) error {
		order = append(order, filepath.Base(path))
		switch filepath.Base(path) {
		case "early.m4a":
			panic("nil transcript")
		case "middle.mp3":
			return fmt.Errorf("%w: lock taken", media.ErrSkipped)
		}
		return nil
	})
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	report, err := s.Run(context.Background(), dir, r, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !equal(order, []string{"early.m4a", "middle.mp3", "late.m4a"}) {
		t.Errorf("order = %v, want the run to continue past the panic", order)
	}
	if report.Succeeded != 1 || report.Failed != 1 || report.Skipped != 1 {
		t.Errorf("Succeeded = %d, Failed = %d, Skipped = %d, want 1 each", report.Succeeded, report.Failed, report.Skipped)
	}
}
