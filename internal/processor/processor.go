package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/transcriber"
)

// Process compresses, transcribes, optionally identifies speakers,
// summarizes and writes the outputs for path. The temp directory is always
// removed before returning.
func (p *implProcessor) Process(ctx context.Context, path string, opts Options) (Result, error) {
	startTime := time.Now()
	p.logger.Info(ctx, "Processing %s (service %s)", path, opts.Service)

	if !p.filter.Supported(path) {
		return Result{}, Errorf(TypeUnsupportedFormat, "", "%s is not a supported media file", filepath.Base(path))
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, Wrap(TypeFileNotFound, "", "stat", err)
	}
	if err != nil {
		return Result{}, Wrap(TypeValidation, "", "stat", err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return Result{}, Errorf(TypeValidation, "", "%s is empty or not a regular file", filepath.Base(path))
	}
	tr, ok := p.transcribers[opts.Service]
	if !ok {
		return Result{}, Errorf(TypeValidation, opts.Service, "no transcriber configured for service %q", opts.Service)
	}

	tempDir, err := p.makeTempDir(path)
	if err != nil {
		return Result{}, Wrap(TypeOutput, "", "create temp dir", err)
	}
	defer p.cleanupTempDir(ctx, tempDir)

	result := Result{
		TempDir: tempDir,
		Service: opts.Service,
		Sizes:   Sizes{OriginalBytes: info.Size()},
	}

	audioPath, err := p.prepareAudio(ctx, path, tempDir, opts, &result)
	if err != nil {
		return Result{}, err
	}

	transcript, err := tr.Transcribe(ctx, transcriber.Request{
		AudioPath:   audioPath,
		Model:       opts.Model,
		MinSpeakers: opts.MinSpeakers,
		MaxSpeakers: opts.MaxSpeakers,
	})
	if err != nil {
		return Result{}, Wrap(TypeTranscription, tr.Name(), "transcribe", err)
	}
	result.Model = transcript.Model
	p.logger.Info(ctx, "Transcribed %s: %d segments, %d speakers", filepath.Base(path), len(transcript.Segments), len(transcript.Speakers()))

	if opts.IdentifySpeakers {
		transcript = p.identifySpeakers(ctx, audioPath, transcript)
	}

	title := stem(path)
	summary, err := p.summarizer.Summarize(ctx, title, transcript.Text())
	if err != nil {
		return Result{}, Wrap(TypeSummarization, "gemini", "summarize", err)
	}

	finalName, outputs, err := p.writeOutputs(ctx, title, transcript, summary)
	if err != nil {
		return Result{}, err
	}
	result.FinalName = finalName
	result.DestinationPaths = append(outputs, p.archive(ctx, finalName, outputs)...)

	p.logger.Info(ctx, "Processed %s -> %s in %s", filepath.Base(path), finalName, time.Since(startTime).Round(time.Millisecond))
	return result, nil
}

func (p *implProcessor) makeTempDir(path string) (string, error) {
	if err := os.MkdirAll(p.cfg.TempDir, 0755); err != nil {
		return "", err
	}
	return os.MkdirTemp(p.cfg.TempDir, safeName(stem(path))+"-")
}

// cleanupTempDir removes a temporary directory, logs warning if fails
func (p *implProcessor) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
		return
	}
	p.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// safeName keeps file names portable across the output and archive targets
func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return fmt.Sprintf("recording-%d", time.Now().Unix())
	}
	return s
}
