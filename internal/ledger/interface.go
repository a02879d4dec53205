package ledger

import "context"

// Ledger is the durable record of per-file outcomes. Appends never return
// errors: a failed write is logged and the in-memory index still advances.
type Ledger interface {
	LoadIndex(ctx context.Context) (Index, error)
	AppendSuccess(ctx context.Context, s Success)
	AppendFailure(ctx context.Context, f Failure)

	IsProcessed(path string) bool
	FailedAttempts(path string) int
	Index() Index
	Path() string
}
