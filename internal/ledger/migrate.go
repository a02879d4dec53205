package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// legacyEntry accepts every field name older releases used
type legacyEntry struct {
	Filename         string          `json:"filename"`
	OriginalFileName string          `json:"originalFileName"`
	File             string          `json:"file"`
	Timestamp        json.RawMessage `json:"timestamp"`
	ProcessedAt      json.RawMessage `json:"processedAt"`
}

func (e legacyEntry) name() string {
	for _, n := range []string{e.Filename, e.OriginalFileName, e.File} {
		if n = strings.TrimSpace(n); n != "" {
			return filepath.Base(n)
		}
	}
	return ""
}

func (e legacyEntry) time() (time.Time, bool) {
	for _, raw := range []json.RawMessage{e.Timestamp, e.ProcessedAt} {
		if t, ok := parseLegacyTime(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLegacyTime(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// parseLegacy decodes either a bare array or a {processedFiles: [...]} object
func parseLegacy(data []byte) ([]legacyEntry, error) {
	var list []legacyEntry
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		ProcessedFiles []legacyEntry `json:"processedFiles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode legacy list: %w", err)
	}
	return wrapped.ProcessedFiles, nil
}

// migrateLegacy converts the first legacy list found into success records.
// It only runs while the ledger file does not exist, and always leaves the
// file behind once a legacy list has been read.
func (l *implLedger) migrateLegacy(ctx context.Context) error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat ledger: %w", err)
	}

	for _, candidate := range l.legacyPaths {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			l.logger.Warn(ctx, "Cannot read legacy list %s: %v", candidate, err)
			continue
		}
		entries, err := parseLegacy(data)
		if err != nil {
			l.logger.Warn(ctx, "Ignoring legacy list %s: %v", candidate, err)
			continue
		}

		records := l.legacyRecords(entries)
		l.mu.Lock()
		err = l.writeLocked(records)
		l.mu.Unlock()
		if err != nil {
			return fmt.Errorf("write migrated records: %w", err)
		}
		l.logger.Info(ctx, "Migrated %d entries from legacy list %s into %s", len(records), candidate, l.path)
		return nil
	}
	return nil
}

func (l *implLedger) legacyRecords(entries []legacyEntry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		name := e.name()
		if name == "" {
			continue
		}
		processedAt, ok := e.time()
		if !ok {
			processedAt = l.now().UTC()
		}
		records = append(records, Record{
			ProcessedAt: processedAt,
			SourcePath:  l.findInWatchDirs(name),
			SourceName:  name,
			Status:      StatusSuccess,
			RunID:       l.runID,
		})
	}
	return records
}

func (l *implLedger) findInWatchDirs(name string) string {
	for _, dir := range l.watchDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
			return candidate
		}
	}
	return ""
}
