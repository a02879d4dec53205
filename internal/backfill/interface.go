package backfill

import "context"

// Scanner reconciles files already sitting in a directory against the ledger
type Scanner interface {
	Plan(ctx context.Context, dir string, r Range) (Plan, error)
	Run(ctx context.Context, dir string, r Range, dryRun bool) (Report, error)
}

// ProcessedChecker reports whether a path already has a success record
type ProcessedChecker interface {
	IsProcessed(path string) bool
}

// ProcessFunc handles one file; it is the same routine the live queue runs
type ProcessFunc func(ctx context.Context, path string) error
