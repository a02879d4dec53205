// Package media describes candidate media files and the rules deciding which
// files the pipeline accepts.
package media

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// SentinelSuffix marks an advisory lock file next to a source file.
const SentinelSuffix = ".processing"

// ErrSkipped is returned by a processing routine for a file it chose not to
// process, such as one already done or locked by another attempt.
var ErrSkipped = errors.New("skipped")

// CandidateFile is a file that is safe to hand to the ingest queue.
type CandidateFile struct {
	AbsolutePath    string
	DirectoryOrigin string
	DiscoveredAt    time.Time
	Extension       string
}

// NewCandidate builds a CandidateFile for path discovered under root.
func NewCandidate(path, root string, discoveredAt time.Time) CandidateFile {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return CandidateFile{
		AbsolutePath:    abs,
		DirectoryOrigin: root,
		DiscoveredAt:    discoveredAt,
		Extension:       strings.ToLower(filepath.Ext(path)),
	}
}

// IsSentinel reports whether path is a lock sentinel.
func IsSentinel(path string) bool {
	return strings.HasSuffix(path, SentinelSuffix)
}
