package ledger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
)

// Options configures a Ledger
type Options struct {
	Path string
	// LegacyPaths replaces the default legacy candidate locations when set
	LegacyPaths []string
	// WatchDirs are searched to back-fill sourcePath for migrated entries
	WatchDirs []string
	RunID     string
	Now       func() time.Time
}

type implLedger struct {
	path        string
	legacyPaths []string
	watchDirs   []string
	runID       string
	now         func() time.Time
	logger      logger.Logger

	mu    sync.RWMutex
	index Index
}

// New creates a Ledger backed by the NDJSON file at opts.Path
func New(opts Options, log logger.Logger) Ledger {
	legacy := opts.LegacyPaths
	if len(legacy) == 0 {
		legacy = DefaultLegacyPaths(opts.Path)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &implLedger{
		path:        opts.Path,
		legacyPaths: legacy,
		watchDirs:   opts.WatchDirs,
		runID:       opts.RunID,
		now:         now,
		logger:      log,
		index:       NewIndex(),
	}
}

// DefaultLegacyPaths lists where older releases kept their processed list
func DefaultLegacyPaths(ledgerPath string) []string {
	dir := filepath.Dir(ledgerPath)
	paths := []string{
		filepath.Join(dir, "processed_files.json"),
		filepath.Join(dir, "processed.json"),
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, "processed_files.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".summarai", "processed_files.json"))
	}
	return dedupe(paths)
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, p)
	}
	return out
}
