package watcher

import (
	"context"
	"os"
	"time"
)

// stabilityDetector decides when a file has finished being written: its size
// must hold across two observations one interval apart and its mtime must be
// at least threshold old
type stabilityDetector struct {
	threshold time.Duration
	interval  time.Duration
	stat      func(name string) (os.FileInfo, error)
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// waitStable polls path until it is stable. It returns false when the file
// disappears or ctx ends first. There is no upper bound on polling.
func (d *stabilityDetector) waitStable(ctx context.Context, path string) bool {
	prev, err := d.stat(path)
	if err != nil {
		return false
	}
	for {
		if err := d.sleep(ctx, d.interval); err != nil {
			return false
		}
		cur, err := d.stat(path)
		if err != nil {
			return false
		}
		if cur.Size() == prev.Size() && d.now().Sub(cur.ModTime()) >= d.threshold {
			return true
		}
		prev = cur
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
