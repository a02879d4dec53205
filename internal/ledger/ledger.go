package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"io"
	"path/filepath"
)

const maxLineBytes = 1 << 20

// LoadIndex migrates any legacy list, then rebuilds the index by replaying
// every line of the ledger file. Unparseable lines are skipped.
func (l *implLedger) LoadIndex(ctx context.Context) (Index, error) {
	if err := l.migrateLegacy(ctx); err != nil {
		l.logger.Warn(ctx, "Legacy ledger migration failed: %v", err)
	}

	idx := NewIndex()
	file, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.setIndex(idx)
		return idx.Clone(), nil
	}
	if err != nil {
		return Index{}, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 64*1024)
	lineNo, loaded, skipped := 0, 0, 0
	for {
		raw, tooLong, readErr := readLine(reader, maxLineBytes)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return Index{}, fmt.Errorf("read ledger: %w", readErr)
		}
		if len(raw) == 0 && !tooLong && readErr != nil {
			break
		}
		lineNo++

		switch line := bytes.TrimSpace(raw); {
		case tooLong:
			l.logger.Warn(ctx, "Skipping ledger line %d: longer than %d bytes", lineNo, maxLineBytes)
			skipped++
		case len(line) == 0:
		default:
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				l.logger.Warn(ctx, "Skipping malformed ledger line %d: %v", lineNo, err)
				skipped++
				break
			}
			if rec.SourcePath == "" && rec.SourceName == "" {
				l.logger.Warn(ctx, "Skipping ledger line %d without source path or name", lineNo)
				skipped++
				break
			}
			idx.Apply(rec)
			loaded++
		}

		if readErr != nil {
			break
		}
	}

	l.logger.Info(ctx, "Ledger loaded: %d records, %d processed, %d failed, %d skipped lines",
		loaded, len(idx.BySourcePath)+len(idx.LegacyNames), len(idx.FailedFiles), skipped)
	l.setIndex(idx)
	return idx.Clone(), nil
}

// readLine returns the next line without holding more than max bytes of it.
// An overlong line is consumed up to its newline and reported as tooLong.
func readLine(r *bufio.Reader, max int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > max {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

func (l *implLedger) AppendSuccess(ctx context.Context, s Success) {
	rec := Record{
		ProcessedAt:      l.now().UTC(),
		SourcePath:       s.SourcePath,
		SourceName:       filepath.Base(s.SourcePath),
		Status:           StatusSuccess,
		DestinationPaths: s.DestinationPaths,
		Service:          s.Service,
		Model:            s.Model,
		Sizes:            s.Sizes,
		RunID:            l.runID,
	}
	l.append(ctx, rec)
}

func (l *implLedger) AppendFailure(ctx context.Context, f Failure) {
	errInfo := f.Error
	rec := Record{
		ProcessedAt:   l.now().UTC(),
		SourcePath:    f.SourcePath,
		SourceName:    filepath.Base(f.SourcePath),
		Status:        StatusFailed,
		Service:       f.Service,
		Model:         f.Model,
		AttemptNumber: f.AttemptNumber,
		Error:         &errInfo,
		RunID:         l.runID,
	}
	l.append(ctx, rec)
}

func (l *implLedger) append(ctx context.Context, rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.index.Apply(rec)
	if err := l.writeLocked([]Record{rec}); err != nil {
		l.logger.Error(ctx, "Failed to append %s record for %s to ledger: %v", rec.Status, rec.key(), err)
	}
}

// writeLocked appends records to the ledger file, creating it and its
// parent directory when missing
func (l *implLedger) writeLocked(records []Record) error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			file.Close()
			return fmt.Errorf("encode record: %w", err)
		}
		w.Write(b)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	return file.Close()
}

func (l *implLedger) setIndex(idx Index) {
	l.mu.Lock()
	l.index = idx
	l.mu.Unlock()
}

func (l *implLedger) IsProcessed(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.IsProcessed(path)
}

// FailedAttempts returns how many attempts have failed for path since it
// last succeeded, or 0
func (l *implLedger) FailedAttempts(path string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if f, ok := l.index.FailedFiles[path]; ok {
		return f.AttemptNumber
	}
	if f, ok := l.index.FailedFiles[filepath.Base(path)]; ok {
		return f.AttemptNumber
	}
	return 0
}

func (l *implLedger) Index() Index {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.Clone()
}

func (l *implLedger) Path() string {
	return l.path
}
