package queue

import "context"

// ProcessFunc is the per-file processing routine the queue serializes
type ProcessFunc func(ctx context.Context, path string) error

// Queue runs ProcessFunc for one path at a time in FIFO order
type Queue interface {
	// Enqueue appends path unless it is queued or was already seen this run.
	// It reports whether the path was accepted.
	Enqueue(ctx context.Context, path string) bool
	// Wait blocks until the queue is empty and no file is in flight
	Wait(ctx context.Context) error
	Len() int
}
