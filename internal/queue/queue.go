package queue

import (
	"context"
	"fmt"
)

func (q *implQueue) Enqueue(ctx context.Context, path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[path]; ok {
		q.logger.Debug(ctx, "Already queued: %s", path)
		return false
	}
	if _, ok := q.seen[path]; ok {
		q.logger.Debug(ctx, "Already handled this run: %s", path)
		return false
	}

	q.items = append(q.items, path)
	q.queued[path] = struct{}{}
	q.seen[path] = struct{}{}
	q.logger.Info(ctx, "Queued %s (%d waiting)", path, len(q.items))

	if !q.draining {
		q.draining = true
		q.idle = make(chan struct{})
		go q.drain(context.WithoutCancel(ctx), ctx.Done())
	}
	return true
}

// drain processes items until the queue is empty. stop ends the loop
// between files; a file already dequeued always runs to completion.
func (q *implQueue) drain(ctx context.Context, stop <-chan struct{}) {
	for {
		path, ok := q.pop()
		if !ok {
			return
		}

		if err := q.run(ctx, path); err != nil {
			q.logger.Error(ctx, "Processing failed for %s: %v", path, err)
			q.mu.Lock()
			delete(q.seen, path)
			q.mu.Unlock()
		}

		if q.Len() == 0 {
			continue
		}
		select {
		case <-stop:
			q.abandon(ctx)
			return
		default:
		}
		sleepCtx, cancel := stopContext(ctx, stop)
		err := q.sleep(sleepCtx, q.interFileDelay)
		cancel()
		if err != nil {
			q.abandon(ctx)
			return
		}
	}
}

// pop removes the head, or marks the queue idle when there is none
func (q *implQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		q.draining = false
		close(q.idle)
		return "", false
	}
	path := q.items[0]
	q.items = q.items[1:]
	delete(q.queued, path)
	return path, true
}

// abandon drops pending items after shutdown so Wait returns
func (q *implQueue) abandon(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		q.logger.Warn(ctx, "Shutting down with %d queued files left unprocessed", len(q.items))
	}
	for _, path := range q.items {
		delete(q.queued, path)
		delete(q.seen, path)
	}
	q.items = nil
	q.draining = false
	close(q.idle)
}

func (q *implQueue) run(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()
	return q.process(ctx, path)
}

func (q *implQueue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *implQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// stopContext derives a context cancelled when stop closes
func stopContext(ctx context.Context, stop <-chan struct{}) (context.Context, context.CancelFunc) {
	c, cancel := context.WithCancel(ctx)
	if stop == nil {
		return c, cancel
	}
	go func() {
		select {
		case <-stop:
		case <-c.Done():
		}
		cancel()
	}()
	return c, cancel
}
