package backfill

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
)

type implScanner struct {
	filter         media.Filter
	ledger         ProcessedChecker
	process        ProcessFunc
	interFileDelay time.Duration
	logger         logger.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

// New creates a Scanner that runs process for each pending file
func New(filter media.Filter, ledger ProcessedChecker, process ProcessFunc, interFileDelay time.Duration, log logger.Logger) Scanner {
	return &implScanner{
		filter:         filter,
		ledger:         ledger,
		process:        process,
		interFileDelay: interFileDelay,
		logger:         log,
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
