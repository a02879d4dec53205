package lock

import (
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
)

type implManager struct {
	staleAfter time.Duration
	now        func() time.Time
	logger     logger.Logger
}

// New creates a Manager. staleAfter of 0 disables reclamation.
func New(staleAfter time.Duration, log logger.Logger) Manager {
	return &implManager{
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     log,
	}
}
