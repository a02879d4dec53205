package processor

import (
	"time"

	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
	"github.com/nguyentantai21042004/summarai/internal/speaker"
	"github.com/nguyentantai21042004/summarai/internal/storage"
	"github.com/nguyentantai21042004/summarai/internal/summarizer"
	"github.com/nguyentantai21042004/summarai/internal/transcriber"
	"github.com/nguyentantai21042004/summarai/pkg/executor"
)

// Config holds the router's paths and encoder settings
type Config struct {
	OutputDir    string
	TempDir      string
	FFmpegPath   string
	AudioCodec   string
	AudioBitrate string
	SampleRate   int
}

// Deps are the collaborators the router drives. Matcher and Archiver are
// optional.
type Deps struct {
	Executor     executor.Executor
	Filter       media.Filter
	Transcribers map[string]transcriber.Transcriber
	Summarizer   summarizer.Summarizer
	Matcher      speaker.Matcher
	Archiver     storage.Archiver
}

type implProcessor struct {
	cfg          Config
	executor     executor.Executor
	filter       media.Filter
	transcribers map[string]transcriber.Transcriber
	summarizer   summarizer.Summarizer
	matcher      speaker.Matcher
	archiver     storage.Archiver
	logger       logger.Logger
	now          func() time.Time
}

// New creates a Router
func New(cfg Config, deps Deps, log logger.Logger) Router {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &implProcessor{
		cfg:          cfg,
		executor:     deps.Executor,
		filter:       deps.Filter,
		transcribers: deps.Transcribers,
		summarizer:   deps.Summarizer,
		matcher:      deps.Matcher,
		archiver:     deps.Archiver,
		logger:       log,
		now:          time.Now,
	}
}
