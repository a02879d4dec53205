package logger

import "context"

// Logger defines the leveled, printf-style logging interface used across the pipeline
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// With returns a logger that attaches the key/value pair to every record
	With(key string, value any) Logger
}
