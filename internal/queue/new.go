package queue

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
)

type implQueue struct {
	process        ProcessFunc
	interFileDelay time.Duration
	logger         logger.Logger
	sleep          func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	items    []string
	queued   map[string]struct{}
	seen     map[string]struct{}
	draining bool
	idle     chan struct{}
}

// New creates a Queue that waits interFileDelay between consecutive files
func New(process ProcessFunc, interFileDelay time.Duration, log logger.Logger) Queue {
	idle := make(chan struct{})
	close(idle)
	return &implQueue{
		process:        process,
		interFileDelay: interFileDelay,
		logger:         log,
		sleep:          sleepContext,
		queued:         make(map[string]struct{}),
		seen:           make(map[string]struct{}),
		idle:           idle,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
