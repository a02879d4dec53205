package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

type backlogEntry struct {
	path    string
	modTime time.Time
}

func (c *implCoordinator) DrainBacklog(ctx context.Context) (int, error) {
	var entries []backlogEntry
	for _, root := range c.dirs.WatchPaths() {
		found, err := c.listPending(root)
		if err != nil {
			c.logger.Warn(ctx, "Backlog scan of %s failed: %v", root, err)
			continue
		}
		entries = append(entries, found...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	enqueued := 0
	for _, e := range entries {
		if c.Enqueue(ctx, e.path) {
			enqueued++
		}
	}
	c.logger.Info(ctx, "Backlog: %d unprocessed files queued", enqueued)
	if enqueued == 0 {
		return 0, nil
	}
	return enqueued, c.queue.Wait(ctx)
}

// listPending walks root the way the watcher does and returns the supported
// files without a success record
func (c *implCoordinator) listPending(root string) ([]backlogEntry, error) {
	var out []backlogEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && c.filter.IgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !c.filter.Accept(path) || c.ledger.IsProcessed(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, backlogEntry{path: path, modTime: info.ModTime()})
		return nil
	})
	return out, err
}
