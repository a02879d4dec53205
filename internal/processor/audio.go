package processor

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/summarai/internal/config"
)

// prepareAudio returns the file the transcriber should read. whisper.cpp
// needs 16kHz mono WAV; other services get the original or, when the
// directory asks for it, a compressed mono copy.
func (p *implProcessor) prepareAudio(ctx context.Context, path, tempDir string, opts Options, result *Result) (string, error) {
	if opts.Service == config.ServiceWhisper {
		wav, err := p.extractWAV(ctx, path, tempDir)
		if err != nil {
			return "", Wrap(TypeTranscription, config.ServiceWhisper, "extract audio", err)
		}
		return wav, nil
	}
	if !opts.Compress {
		return path, nil
	}

	compressed, err := p.compress(ctx, path, tempDir)
	if err != nil {
		return "", Wrap(TypeValidation, "ffmpeg", "compress", err)
	}
	result.CompressedPath = compressed
	if info, err := os.Stat(compressed); err == nil {
		result.Sizes.CompressedBytes = info.Size()
		p.logger.Info(ctx, "Compressed %s: %s -> %s", filepath.Base(path),
			humanBytes(result.Sizes.OriginalBytes), humanBytes(result.Sizes.CompressedBytes))
	}
	return compressed, nil
}

// compress transcodes to mono AAC in an M4A container
func (p *implProcessor) compress(ctx context.Context, path, tempDir string) (string, error) {
	out := filepath.Join(tempDir, safeName(stem(path))+".m4a")
	args := []string{
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(p.sampleRate()),
		"-c:a", p.audioCodec(),
		"-b:a", p.audioBitrate(),
		"-threads", "0",
		"-y",
		out,
	}
	if _, err := p.executor.Execute(ctx, p.cfg.FFmpegPath, args...); err != nil {
		return "", err
	}
	return out, nil
}

// extractWAV converts to 16-bit PCM mono WAV
func (p *implProcessor) extractWAV(ctx context.Context, path, tempDir string) (string, error) {
	out := filepath.Join(tempDir, safeName(stem(path))+".wav")
	args := []string{
		"-i", path,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		out,
	}
	if _, err := p.executor.Execute(ctx, p.cfg.FFmpegPath, args...); err != nil {
		return "", err
	}
	return out, nil
}

func (p *implProcessor) sampleRate() int {
	if p.cfg.SampleRate > 0 {
		return p.cfg.SampleRate
	}
	return 16000
}

func (p *implProcessor) audioCodec() string {
	if p.cfg.AudioCodec != "" {
		return p.cfg.AudioCodec
	}
	return "aac"
}

func (p *implProcessor) audioBitrate() string {
	if p.cfg.AudioBitrate != "" {
		return p.cfg.AudioBitrate
	}
	return "64k"
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
