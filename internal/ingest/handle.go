package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/config"
	"github.com/nguyentantai21042004/summarai/internal/ledger"
	"github.com/nguyentantai21042004/summarai/internal/lock"
	"github.com/nguyentantai21042004/summarai/internal/media"
	"github.com/nguyentantai21042004/summarai/internal/processor"
)

func (c *implCoordinator) Handle(ctx context.Context, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	name := filepath.Base(path)

	if c.ledger.IsProcessed(path) {
		c.logger.Debug(ctx, "Skipping %s: already processed", name)
		return fmt.Errorf("%w: already processed", media.ErrSkipped)
	}
	if c.locks.Exists(path) {
		if !c.locks.Stale(path) {
			c.logger.Info(ctx, "Skipping %s: another attempt holds its lock", name)
			return fmt.Errorf("%w: lock held", media.ErrSkipped)
		}
		if err := c.locks.Reclaim(path); err != nil {
			c.logger.Warn(ctx, "Skipping %s: could not reclaim stale lock: %v", name, err)
			return fmt.Errorf("%w: reclaim stale lock: %v", media.ErrSkipped, err)
		}
	}

	dir := c.directoryFor(ctx, path)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		err = processor.Wrap(processor.TypeFileNotFound, "", "stat", err)
		c.recordFailure(ctx, path, dir, "", err)
		return err
	}

	handle, err := c.locks.Acquire(path)
	if errors.Is(err, lock.ErrLocked) {
		c.logger.Info(ctx, "Skipping %s: lock taken by another attempt", name)
		return fmt.Errorf("%w: lock taken", media.ErrSkipped)
	}
	if err != nil {
		c.logger.Error(ctx, "Failed to lock %s: %v", name, err)
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		if err := c.locks.Release(handle); err != nil {
			c.logger.Warn(ctx, "Failed to release lock for %s: %v", name, err)
		}
	}()

	startTime := time.Now()
	res, err := c.router.Process(context.WithoutCancel(ctx), path, processor.Options{
		Service:          dir.Service,
		Model:            dir.Model,
		MinSpeakers:      dir.MinSpeakers,
		MaxSpeakers:      dir.MaxSpeakers,
		Compress:         dir.Compress,
		IdentifySpeakers: dir.IdentifySpeakers,
	})
	if err != nil {
		c.recordFailure(ctx, path, dir, res.Model, err)
		return err
	}

	success := ledger.Success{
		SourcePath:       path,
		DestinationPaths: res.DestinationPaths,
		Service:          res.Service,
		Model:            res.Model,
	}
	if res.Sizes.OriginalBytes > 0 {
		success.Sizes = &ledger.Sizes{
			OriginalBytes:   res.Sizes.OriginalBytes,
			CompressedBytes: res.Sizes.CompressedBytes,
		}
	}
	c.ledger.AppendSuccess(ctx, success)
	c.logger.Info(ctx, "Completed %s in %s (%d outputs)", name, time.Since(startTime).Round(time.Second), len(res.DestinationPaths))
	return nil
}

// runQueued is the queue's routine. A skip is not a queue failure.
func (c *implCoordinator) runQueued(ctx context.Context, path string) error {
	if err := c.Handle(ctx, path); err != nil && !errors.Is(err, media.ErrSkipped) {
		return err
	}
	return nil
}

func (c *implCoordinator) recordFailure(ctx context.Context, path string, dir config.WatchDir, model string, err error) {
	attempt := c.ledger.FailedAttempts(path) + 1
	typ, code, service := processor.Classify(err)
	if service == "" {
		service = dir.Service
	}
	c.ledger.AppendFailure(ctx, ledger.Failure{
		SourcePath:    path,
		AttemptNumber: attempt,
		Error: ledger.ErrorInfo{
			Message: err.Error(),
			Type:    string(typ),
			Code:    code,
			Service: service,
		},
		Service: dir.Service,
		Model:   model,
	})
	c.logger.Error(ctx, "Failed %s (attempt %d): %v", filepath.Base(path), attempt, err)
}

// directoryFor returns the options of the watch directory holding path.
// Files outside every root, as in a backfill of another directory, get the
// default service.
func (c *implCoordinator) directoryFor(ctx context.Context, path string) config.WatchDir {
	if dir, ok := c.dirs.DirectoryFor(path); ok {
		return dir
	}
	c.logger.Debug(ctx, "%s is outside every watch directory, using defaults", path)
	return config.WatchDir{Service: config.ServiceGemini}
}

func (c *implCoordinator) Enqueue(ctx context.Context, path string) bool {
	if media.IsSentinel(path) {
		return false
	}
	return c.queue.Enqueue(ctx, path)
}

func (c *implCoordinator) OnArrival(ctx context.Context, cand media.CandidateFile) {
	c.Enqueue(ctx, cand.AbsolutePath)
}

func (c *implCoordinator) Wait(ctx context.Context) error {
	return c.queue.Wait(ctx)
}
