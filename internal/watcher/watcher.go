package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/summarai/internal/media"
	"golang.org/x/sync/errgroup"
)

// Start watches every root until ctx is cancelled or Stop is called. A root
// that fails to open or reports an error stops on its own; the others keep
// running. Start fails only when no root could be opened.
func (w *implWatcher) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	opened := 0
	for _, root := range w.roots {
		fw, err := w.openRoot(gctx, root)
		if err != nil {
			w.logger.Error(ctx, "Cannot watch %s: %v", root, err)
			continue
		}
		opened++
		g.Go(func() error {
			return w.watchRoot(gctx, root, fw)
		})
	}
	if opened == 0 {
		return fmt.Errorf("no watch root could be opened")
	}

	w.logger.Info(ctx, "File watcher started on %d of %d roots (stability %s, poll %s)",
		opened, len(w.roots), w.detector.threshold, w.detector.interval)

	err := g.Wait()
	w.wg.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return err
}

func (w *implWatcher) Stop() error {
	w.mu.Lock()
	watchers := w.watchers
	w.watchers = nil
	w.mu.Unlock()

	var firstErr error
	for _, fw := range watchers {
		if err := fw.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *implWatcher) openRoot(ctx context.Context, root string) (*fsnotify.Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(ctx, fw, root); err != nil {
		fw.Close()
		return nil, err
	}

	w.mu.Lock()
	w.watchers = append(w.watchers, fw)
	w.mu.Unlock()
	return fw, nil
}

// addTree registers dir and every non-ignored subdirectory
func (w *implWatcher) addTree(ctx context.Context, fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Warn(ctx, "Skipping unreadable directory %s: %v", path, err)
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.filter.IgnoredDir(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("add watch path: %w", err)
			}
			w.logger.Warn(ctx, "Cannot watch %s: %v", path, err)
		}
		return nil
	})
}

// watchRoot consumes one root's events. Its errors end only this root.
func (w *implWatcher) watchRoot(ctx context.Context, root string, fw *fsnotify.Watcher) error {
	defer fw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				w.handleCreate(ctx, root, fw, event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, "Watcher error on %s, no further events from this root: %v", root, err)
			return nil
		}
	}
}

func (w *implWatcher) handleCreate(ctx context.Context, root string, fw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if !info.IsDir() {
		w.schedule(ctx, root, path)
		return
	}

	if w.filter.IgnoredDir(path) {
		w.logger.Debug(ctx, "Ignoring directory %s", path)
		return
	}
	if err := w.addTree(ctx, fw, path); err != nil {
		w.logger.Warn(ctx, "Cannot watch new directory %s: %v", path, err)
		return
	}
	// files moved in along with the directory produce no events of their own
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			w.schedule(ctx, root, p)
		}
		return nil
	})
}

// schedule starts a stability poll for path unless it is filtered out or
// already being polled
func (w *implWatcher) schedule(ctx context.Context, root, path string) {
	if !w.filter.Accept(path) {
		w.logger.Debug(ctx, "Ignoring %s", path)
		return
	}

	w.mu.Lock()
	if _, ok := w.pending[path]; ok {
		w.mu.Unlock()
		return
	}
	w.pending[path] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug(ctx, "New file detected, waiting for it to settle: %s", path)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		stable := w.detector.waitStable(ctx, path)

		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if !stable {
			w.logger.Debug(ctx, "Dropped %s before it settled", path)
			return
		}
		w.logger.Info(ctx, "File ready: %s", path)
		w.handler(ctx, media.NewCandidate(path, root, time.Now()))
	}()
}
