package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
)

// Options configures a Watcher
type Options struct {
	Roots              []string
	Filter             media.Filter
	StabilityThreshold time.Duration
	PollInterval       time.Duration
}

type implWatcher struct {
	roots    []string
	filter   media.Filter
	handler  ArrivalHandler
	logger   logger.Logger
	detector *stabilityDetector

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
	pending  map[string]struct{}
	wg       sync.WaitGroup
}

// New creates a Watcher over opts.Roots. Roots are not opened until Start.
func New(opts Options, handler ArrivalHandler, log logger.Logger) (Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("watcher requires at least one root")
	}
	if handler == nil {
		return nil, fmt.Errorf("watcher requires an arrival handler")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}

	return &implWatcher{
		roots:   opts.Roots,
		filter:  opts.Filter,
		handler: handler,
		logger:  log,
		detector: &stabilityDetector{
			threshold: opts.StabilityThreshold,
			interval:  opts.PollInterval,
			stat:      os.Stat,
			now:       time.Now,
			sleep:     sleepContext,
		},
		pending: make(map[string]struct{}),
	}, nil
}
