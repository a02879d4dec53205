package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/summarai/internal/backfill"
	"github.com/nguyentantai21042004/summarai/internal/config"
	"github.com/nguyentantai21042004/summarai/internal/gemini"
	"github.com/nguyentantai21042004/summarai/internal/ingest"
	"github.com/nguyentantai21042004/summarai/internal/ledger"
	"github.com/nguyentantai21042004/summarai/internal/lock"
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/internal/media"
	"github.com/nguyentantai21042004/summarai/internal/processor"
	"github.com/nguyentantai21042004/summarai/internal/speaker"
	"github.com/nguyentantai21042004/summarai/internal/storage"
	"github.com/nguyentantai21042004/summarai/internal/summarizer"
	"github.com/nguyentantai21042004/summarai/internal/transcriber"
	"github.com/nguyentantai21042004/summarai/pkg/executor"
)

// pipeline holds the wired components of one process run
type pipeline struct {
	cfg         *config.Config
	runID       string
	logger      logger.Logger
	filter      media.Filter
	ledger      ledger.Ledger
	coordinator ingest.Coordinator
	matcher     speaker.Matcher

	closers []func() error
}

func newLogger(cfg *config.Config) (logger.Logger, func() error, error) {
	return logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
}

func newFilter(cfg *config.Config) media.Filter {
	return media.NewFilter(cfg.Watch.Extensions, cfg.Watch.Ignore.Prefixes, cfg.Watch.Ignore.Patterns, cfg.Watch.Ignore.Directories)
}

func newLedger(cfg *config.Config, runID string, log logger.Logger) ledger.Ledger {
	return ledger.New(ledger.Options{
		Path:        cfg.Ledger.Path,
		LegacyPaths: cfg.Ledger.LegacyPaths,
		WatchDirs:   cfg.WatchPaths(),
		RunID:       runID,
	}, log)
}

func newMatcher(cfg *config.Config, exec executor.Executor, log logger.Logger) speaker.Matcher {
	if cfg.Speaker.ScriptPath == "" {
		return nil
	}
	return speaker.New(speaker.Options{
		PythonPath:       cfg.Speaker.PythonPath,
		ScriptPath:       config.ExpandPath(cfg.Speaker.ScriptPath),
		ProfilesDir:      config.ExpandPath(cfg.Speaker.ProfilesDir),
		Threshold:        cfg.Speaker.Threshold,
		HuggingFaceToken: cfg.Speaker.HuggingFaceToken,
	}, exec, log)
}

// newPipeline takes the instance lock, loads the ledger and wires the
// processing chain. Callers must call close.
func newPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	runID := uuid.NewString()
	baseLog, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	log := baseLog.With("run_id", runID)
	p := &pipeline{cfg: cfg, runID: runID, logger: log, closers: []func() error{closeLog}}

	instance, err := lock.AcquireInstance(filepath.Dir(cfg.Ledger.Path))
	if err != nil {
		p.close()
		if errors.Is(err, lock.ErrInstanceRunning) {
			return nil, fmt.Errorf("%w (lock file in %s)", err, filepath.Dir(cfg.Ledger.Path))
		}
		return nil, err
	}
	p.closers = append([]func() error{instance.Release}, p.closers...)

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			p.close()
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	p.filter = newFilter(cfg)
	p.ledger = newLedger(cfg, runID, log)
	idx, err := p.ledger.LoadIndex(ctx)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	log.Info(ctx, "Ledger %s: %d processed, %d failed", p.ledger.Path(), len(idx.BySourcePath), len(idx.FailedFiles))

	exec := executor.New()
	keys := gemini.NewKeyRing(cfg.Gemini.APIKeys)
	factory := gemini.NewFactory()

	transcribers := map[string]transcriber.Transcriber{
		config.ServiceGemini: transcriber.NewGemini(transcriber.GeminiOptions{
			Model:      cfg.Gemini.TranscriptionModel,
			Language:   cfg.Gemini.Language,
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
			MaxDelay:   cfg.RetryMaxDelay(),
		}, keys, factory, log),
	}
	if cfg.Whisper.ModelPath != "" {
		transcribers[config.ServiceWhisper] = transcriber.NewWhisper(transcriber.WhisperOptions{
			BinaryPath: config.ExpandPath(cfg.Whisper.BinaryPath),
			ModelPath:  config.ExpandPath(cfg.Whisper.ModelPath),
			Language:   cfg.Whisper.Language,
			Prompt:     cfg.Whisper.Prompt,
			Threads:    cfg.Whisper.Threads,
		}, exec, log)
	}

	sum := summarizer.New(summarizer.Options{
		Model:      cfg.Gemini.Model,
		Language:   cfg.Gemini.Language,
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay(),
		MaxDelay:   cfg.RetryMaxDelay(),
	}, keys, factory, log)

	p.matcher = newMatcher(cfg, exec, log)
	if p.matcher != nil && identifiesSpeakers(cfg) {
		if err := p.matcher.Check(ctx); err != nil {
			log.Warn(ctx, "Voice matcher unavailable, speakers keep generic labels: %v", err)
		}
	}

	var archiver storage.Archiver
	if cfg.Storage.Endpoint != "" {
		archiver, err = storage.New(ctx, storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Prefix:    cfg.Storage.Prefix,
			UseSSL:    cfg.Storage.UseSSL,
		}, log)
		if err != nil {
			log.Warn(ctx, "Archive disabled: %v", err)
			archiver = nil
		}
	}

	router := processor.New(processor.Config{
		OutputDir:    cfg.Paths.Output,
		TempDir:      cfg.Paths.Temp,
		FFmpegPath:   cfg.FFmpeg.BinaryPath,
		AudioCodec:   cfg.FFmpeg.AudioCodec,
		AudioBitrate: cfg.FFmpeg.AudioBitrate,
		SampleRate:   cfg.FFmpeg.SampleRate,
	}, processor.Deps{
		Executor:     exec,
		Filter:       p.filter,
		Transcribers: transcribers,
		Summarizer:   sum,
		Matcher:      p.matcher,
		Archiver:     archiver,
	}, log)

	p.coordinator = ingest.New(cfg, p.filter, p.ledger, lock.New(cfg.StaleLockAfter(), log), router, cfg.InterFileDelay(), log)
	return p, nil
}

func (p *pipeline) backfillScanner() backfill.Scanner {
	return backfill.New(p.filter, p.ledger, p.coordinator.Handle, p.cfg.InterFileDelay(), p.logger)
}

func (p *pipeline) close() {
	for _, fn := range p.closers {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}
	p.closers = nil
}

func identifiesSpeakers(cfg *config.Config) bool {
	for _, dir := range cfg.Watch.Directories {
		if dir.IdentifySpeakers {
			return true
		}
	}
	return false
}
