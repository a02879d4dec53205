package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/pkg/executor"
)

// WhisperOptions configures the local whisper.cpp binary
type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Prompt     string
	Threads    int
}

type whisperTranscriber struct {
	opts     WhisperOptions
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates a Transcriber running whisper.cpp. It expects 16kHz mono
// WAV input.
func NewWhisper(opts WhisperOptions, exec executor.Executor, log logger.Logger) Transcriber {
	return &whisperTranscriber{opts: opts, executor: exec, logger: log}
}

func (w *whisperTranscriber) Name() string { return "whisper" }

func (w *whisperTranscriber) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	model := w.opts.ModelPath
	if req.Model != "" {
		model = req.Model
	}
	// whisper appends .srt to the output prefix
	outputPrefix := strings.TrimSuffix(req.AudioPath, filepath.Ext(req.AudioPath))

	args := []string{
		"-m", model,
		"-f", req.AudioPath,
		"-osrt",
		"-l", w.opts.Language,
		"-t", strconv.Itoa(w.opts.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if w.opts.Prompt != "" {
		args = append(args, "--prompt", w.opts.Prompt)
	}

	w.logger.Info(ctx, "Transcribing with whisper (%d threads, model %s): %s", w.opts.Threads, filepath.Base(model), req.AudioPath)
	if _, err := w.executor.Execute(ctx, w.opts.BinaryPath, args...); err != nil {
		return Transcript{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	srtPath := outputPrefix + ".srt"
	content, err := os.ReadFile(srtPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}
	segments := ParseSRT(string(content))
	if len(segments) == 0 {
		return Transcript{}, fmt.Errorf("whisper produced an empty transcript")
	}

	return Transcript{
		Segments: segments,
		Service:  w.Name(),
		Model:    filepath.Base(model),
	}, nil
}
