package ingest

import (
	"context"

	"github.com/nguyentantai21042004/summarai/internal/config"
	"github.com/nguyentantai21042004/summarai/internal/media"
)

// Coordinator guards every processing attempt: ledger skip, lock, router,
// ledger append, unlock. It owns the ingest queue that serializes attempts.
type Coordinator interface {
	// Handle runs one guarded attempt for path. Skipped files return an error wrapping media.ErrSkipped.
	Handle(ctx context.Context, path string) error
	// Enqueue hands path to the ingest queue
	Enqueue(ctx context.Context, path string) bool
	// OnArrival adapts Enqueue to the watcher's arrival callback
	OnArrival(ctx context.Context, c media.CandidateFile)
	// DrainBacklog enqueues every unprocessed supported file under the watch
	// directories, oldest first, and waits for the queue to empty. It returns
	// the number of files enqueued.
	DrainBacklog(ctx context.Context) (int, error)
	Wait(ctx context.Context) error
}

// Directories resolves the watch directory a file belongs to.
// *config.Config implements it.
type Directories interface {
	DirectoryFor(path string) (config.WatchDir, bool)
	WatchPaths() []string
}
