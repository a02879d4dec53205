package ledger

import (
	"path/filepath"
	"time"
)

// FailedFile is the latest failure for a file that never succeeded
type FailedFile struct {
	Error         string
	AttemptNumber int
	LastAttemptAt time.Time
}

// Index is derived state rebuilt by replaying every record in file order.
// A success is permanent: later failures for the same file are ignored.
type Index struct {
	BySourceName map[string]struct{}
	BySourcePath map[string]struct{}
	// LegacyNames holds the names of successes recorded without a path.
	// Only these match other files by basename.
	LegacyNames map[string]struct{}
	FailedFiles map[string]FailedFile
}

// NewIndex returns an empty Index
func NewIndex() Index {
	return Index{
		BySourceName: make(map[string]struct{}),
		BySourcePath: make(map[string]struct{}),
		LegacyNames:  make(map[string]struct{}),
		FailedFiles:  make(map[string]FailedFile),
	}
}

// Apply folds one record into the index
func (ix *Index) Apply(r Record) {
	switch r.Status {
	case StatusSuccess:
		if r.SourceName != "" {
			ix.BySourceName[r.SourceName] = struct{}{}
		}
		if r.SourcePath != "" {
			ix.BySourcePath[r.SourcePath] = struct{}{}
		} else if r.SourceName != "" {
			ix.LegacyNames[r.SourceName] = struct{}{}
		}
		delete(ix.FailedFiles, r.key())
	case StatusFailed:
		if ix.succeeded(r.SourcePath, r.SourceName) {
			return
		}
		msg := ""
		if r.Error != nil {
			msg = r.Error.Message
		}
		ix.FailedFiles[r.key()] = FailedFile{
			Error:         msg,
			AttemptNumber: r.AttemptNumber,
			LastAttemptAt: r.ProcessedAt,
		}
	}
}

func (ix *Index) succeeded(path, name string) bool {
	if path != "" {
		if _, ok := ix.BySourcePath[path]; ok {
			return true
		}
	}
	if path == "" && name != "" {
		if _, ok := ix.LegacyNames[name]; ok {
			return true
		}
	}
	return false
}

// IsProcessed reports whether path has a success record. A basename match
// counts only against legacy records that carry no path.
func (ix *Index) IsProcessed(path string) bool {
	if _, ok := ix.BySourcePath[path]; ok {
		return true
	}
	_, ok := ix.LegacyNames[filepath.Base(path)]
	return ok
}

// Clone returns a deep copy safe to hand to callers
func (ix Index) Clone() Index {
	out := Index{
		BySourceName: make(map[string]struct{}, len(ix.BySourceName)),
		BySourcePath: make(map[string]struct{}, len(ix.BySourcePath)),
		LegacyNames:  make(map[string]struct{}, len(ix.LegacyNames)),
		FailedFiles:  make(map[string]FailedFile, len(ix.FailedFiles)),
	}
	for k := range ix.BySourceName {
		out.BySourceName[k] = struct{}{}
	}
	for k := range ix.BySourcePath {
		out.BySourcePath[k] = struct{}{}
	}
	for k := range ix.LegacyNames {
		out.LegacyNames[k] = struct{}{}
	}
	for k, v := range ix.FailedFiles {
		out.FailedFiles[k] = v
	}
	return out
}
