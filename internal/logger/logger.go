package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type implLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// Options configures where log records go
type Options struct {
	Level  string
	Format string // "text" or "json" for the console handler
	File   string // optional JSON log file
}

// New creates a console Logger at the given level
func New(level string) Logger {
	lvl := parseLevel(level)
	return &implLogger{
		logger: slog.New(consoleHandler(os.Stdout, "text", lvl)),
		level:  lvl,
	}
}

// NewWithOptions creates a Logger that fans out to the console and, when
// opts.File is set, to a JSON file. The returned func closes the file.
func NewWithOptions(opts Options) (Logger, func() error, error) {
	lvl := parseLevel(opts.Level)
	console := consoleHandler(os.Stdout, opts.Format, lvl)
	if opts.File == "" {
		return &implLogger{logger: slog.New(console), level: lvl}, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl})

	return &implLogger{
		logger: slog.New(slogmulti.Fanout(console, fileHandler)),
		level:  lvl,
	}, file.Close, nil
}

// NewWithWriters creates a Logger writing text to console and JSON to file (for testing)
func NewWithWriters(level string, console, file io.Writer) Logger {
	lvl := parseLevel(level)
	return &implLogger{
		logger: slog.New(slogmulti.Fanout(
			consoleHandler(console, "text", lvl),
			slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl}),
		)),
		level: lvl,
	}
}

func consoleHandler(w io.Writer, format string, lvl slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *implLogger) shouldLog(level string) bool {
	return parseLevel(level) >= l.level
}

func (l *implLogger) log(ctx context.Context, level slog.Level, msg string, args ...interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelError, msg, args...)
}

func (l *implLogger) With(key string, value any) Logger {
	return &implLogger{logger: l.logger.With(key, value), level: l.level}
}
