package speaker

import (
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/pkg/executor"
)

// Options configures the voice-matching process
type Options struct {
	PythonPath       string
	ScriptPath       string
	ProfilesDir      string
	Threshold        float64
	HuggingFaceToken string
}

type implMatcher struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Matcher that runs opts.ScriptPath with opts.PythonPath
func New(opts Options, exec executor.Executor, log logger.Logger) Matcher {
	if opts.Threshold == 0 {
		opts.Threshold = 0.70
	}
	return &implMatcher{opts: opts, executor: exec, logger: log}
}
