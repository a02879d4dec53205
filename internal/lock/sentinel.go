package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/media"
)

func (m *implManager) Exists(path string) bool {
	_, err := os.Lstat(path + media.SentinelSuffix)
	return err == nil
}

// Acquire creates the sentinel exclusively and writes the acquisition time
// into it
func (m *implManager) Acquire(path string) (*Handle, error) {
	sentinel := path + media.SentinelSuffix
	f, err := os.OpenFile(sentinel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("create sentinel: %w", err)
	}

	stamp := m.now().UTC().Format(time.RFC3339Nano)
	if _, err := f.WriteString(stamp); err != nil {
		f.Close()
		os.Remove(sentinel)
		return nil, fmt.Errorf("write sentinel: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(sentinel)
		return nil, fmt.Errorf("close sentinel: %w", err)
	}
	return &Handle{Path: path, Sentinel: sentinel, AcquiredAt: stamp}, nil
}

// Release deletes the sentinel. A sentinel that is already gone is not an error.
func (m *implManager) Release(h *Handle) error {
	if h == nil {
		return nil
	}
	if err := os.Remove(h.Sentinel); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove sentinel: %w", err)
	}
	return nil
}

func (m *implManager) Stale(path string) bool {
	if m.staleAfter <= 0 {
		return false
	}
	created, ok := m.createdAt(path + media.SentinelSuffix)
	if !ok {
		return false
	}
	return m.now().Sub(created) > m.staleAfter
}

func (m *implManager) Reclaim(path string) error {
	sentinel := path + media.SentinelSuffix
	created, _ := m.createdAt(sentinel)
	m.logger.Warn(context.Background(), "Reclaiming stale lock %s (created %s)", sentinel, created.Format(time.RFC3339))
	if err := os.Remove(sentinel); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale sentinel: %w", err)
	}
	return nil
}

// createdAt prefers the timestamp written into the sentinel and falls back
// to its modification time
func (m *implManager) createdAt(sentinel string) (time.Time, bool) {
	if b, err := os.ReadFile(sentinel); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(b))); err == nil {
			return t, true
		}
	}
	info, err := os.Stat(sentinel)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
