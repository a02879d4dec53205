package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/gemini"
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/pkg/retry"
	"google.golang.org/genai"
)

// GeminiOptions configures transcription through the Gemini Files API
type GeminiOptions struct {
	Model      string
	Language   string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type geminiTranscriber struct {
	opts    GeminiOptions
	keys    *gemini.KeyRing
	factory gemini.Factory
	logger  logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewGemini creates a Transcriber that uploads audio to Gemini. Keys rotate
// after every failed attempt.
func NewGemini(opts GeminiOptions, keys *gemini.KeyRing, factory gemini.Factory, log logger.Logger) Transcriber {
	return &geminiTranscriber{opts: opts, keys: keys, factory: factory, logger: log}
}

func (g *geminiTranscriber) Name() string { return "gemini" }

func (g *geminiTranscriber) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	model := g.opts.Model
	if req.Model != "" {
		model = req.Model
	}
	mimeType := MIMEType(req.AudioPath)

	// the upload consumes the reader, so every retry needs a fresh one
	reader, openErr := os.Open(req.AudioPath)
	if openErr != nil {
		return Transcript{}, fmt.Errorf("open audio: %w", openErr)
	}
	defer func() {
		if reader != nil {
			reader.Close()
		}
	}()

	policy := retry.Policy{
		MaxRetries:  g.opts.MaxRetries,
		BaseDelay:   g.opts.BaseDelay,
		MaxDelay:    g.opts.MaxDelay,
		ShouldRetry: retry.IsTransient,
		Sleep:       g.sleep,
		OnRetry: func(attempt int, err error) {
			_, pos := g.keys.Current()
			g.logger.Warn(ctx, "Gemini transcription attempt %d failed with key %d, retrying: %v", attempt, pos, err)
			g.keys.Rotate()
			if reader != nil {
				reader.Close()
			}
			reader, openErr = os.Open(req.AudioPath)
		},
	}

	raw, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
		if openErr != nil {
			return "", fmt.Errorf("reopen audio: %w", openErr)
		}
		key, pos := g.keys.Current()
		client, err := g.factory(ctx, key)
		if err != nil {
			return "", err
		}

		g.logger.Info(ctx, "Uploading %s to Gemini (key %d)", filepath.Base(req.AudioPath), pos)
		file, err := client.Upload(ctx, reader, mimeType)
		if err != nil {
			return "", err
		}
		defer func() {
			if err := client.Delete(context.WithoutCancel(ctx), file.Name); err != nil {
				g.logger.Debug(ctx, "Could not delete uploaded file %s: %v", file.Name, err)
			}
		}()
		if file, err = client.WaitActive(ctx, file); err != nil {
			return "", err
		}

		contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(transcriptionPrompt(g.opts.Language, req.MinSpeakers, req.MaxSpeakers)),
		}, genai.RoleUser)}
		return client.Generate(ctx, model, contents, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	}, policy)
	if err != nil {
		return Transcript{}, err
	}

	segments, err := ParseGeminiSegments(raw)
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{Segments: segments, Service: g.Name(), Model: model}, nil
}

func transcriptionPrompt(language string, minSpeakers, maxSpeakers int) string {
	var b strings.Builder
	b.WriteString("Transcribe this recording verbatim. Identify distinct speakers and label them \"Speaker 1\", \"Speaker 2\" and so on in order of first appearance.")
	switch {
	case minSpeakers > 0 && maxSpeakers > 0:
		fmt.Fprintf(&b, " Expect between %d and %d speakers.", minSpeakers, maxSpeakers)
	case maxSpeakers > 0:
		fmt.Fprintf(&b, " Expect at most %d speakers.", maxSpeakers)
	case minSpeakers > 0:
		fmt.Fprintf(&b, " Expect at least %d speakers.", minSpeakers)
	}
	if language != "" {
		fmt.Fprintf(&b, " The transcript language is %s.", language)
	}
	b.WriteString(` Respond with JSON only: {"segments":[{"speaker":"Speaker 1","start":"MM:SS","end":"MM:SS","text":"..."}]}.`)
	return b.String()
}

type rawSegment struct {
	Speaker string          `json:"speaker"`
	Start   json.RawMessage `json:"start"`
	End     json.RawMessage `json:"end"`
	Text    string          `json:"text"`
}

// ParseGeminiSegments decodes the model's JSON answer. It tolerates code
// fences, a bare array, and timestamps given as strings or seconds.
func ParseGeminiSegments(raw string) ([]Segment, error) {
	raw = stripCodeFence(raw)

	var wrapped struct {
		Segments []rawSegment `json:"segments"`
	}
	var list []rawSegment
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Segments != nil {
		list = wrapped.Segments
	} else if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	segments := make([]Segment, 0, len(list))
	for _, r := range list {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Speaker: strings.TrimSpace(r.Speaker),
			Start:   rawSeconds(r.Start),
			End:     rawSeconds(r.End),
			Text:    text,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript has no segments")
	}
	return segments, nil
}

func rawSeconds(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := ParseTimestamp(s); err == nil {
			return v
		}
	}
	return 0
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// MIMEType maps a media extension to the type Gemini expects
func MIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "audio/mp4"
	}
}
