package summarizer

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/gemini"
	"github.com/nguyentantai21042004/summarai/internal/logger"
)

// Options configures the Gemini summarizer
type Options struct {
	Model      string
	Language   string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type implSummarizer struct {
	opts    Options
	keys    *gemini.KeyRing
	factory gemini.Factory
	logger  logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(opts Options, keys *gemini.KeyRing, factory gemini.Factory, log logger.Logger) Summarizer {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	return &implSummarizer{
		opts:    opts,
		keys:    keys,
		factory: factory,
		logger:  log,
	}
}
