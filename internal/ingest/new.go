package ingest

import (
	"time"

	"github.com/nguyentantai21042004/summarai/internal/ledger"
	"github.com/nguyentantai21042004/summarai/internal/lock"
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
	"github.com/nguyentantai21042004/summarai/internal/processor"
	"github.com/nguyentantai21042004/summarai/internal/queue"
)

type implCoordinator struct {
	dirs   Directories
	filter media.Filter
	ledger ledger.Ledger
	locks  lock.Manager
	router processor.Router
	queue  queue.Queue
	logger logger.Logger
}

// New creates a Coordinator whose queue waits interFileDelay between files
func New(dirs Directories, filter media.Filter, l ledger.Ledger, locks lock.Manager, router processor.Router, interFileDelay time.Duration, log logger.Logger) Coordinator {
	c := &implCoordinator{
		dirs:   dirs,
		filter: filter,
		ledger: l,
		locks:  locks,
		router: router,
		logger: log,
	}
	c.queue = queue.New(c.runQueued, interFileDelay, log)
	return c
}
