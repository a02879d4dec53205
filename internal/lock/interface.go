package lock

import "errors"

// ErrLocked is returned by Acquire when another attempt holds the sentinel
var ErrLocked = errors.New("lock: file is already being processed")

// Manager is an advisory per-file lock backed by a "<path>.processing"
// sentinel. Callers check Exists before Acquire and skip busy files.
type Manager interface {
	Exists(path string) bool
	Acquire(path string) (*Handle, error)
	Release(h *Handle) error

	// Stale reports whether the sentinel for path is older than the
	// configured ceiling. Always false when reclamation is disabled.
	Stale(path string) bool
	// Reclaim removes a stale sentinel so the file can be retried
	Reclaim(path string) error
}

// Handle identifies one held sentinel
type Handle struct {
	Path       string
	Sentinel   string
	AcquiredAt string
}
