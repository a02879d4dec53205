package transcriber

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/summarai/internal/gemini"
	"github.com/nguyentantai21042004/summarai/internal/logger"
	"github.com/nguyentantai21042004/summarai/pkg/retry"
	"google.golang.org/genai"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01,500", 1.5, false},
		{"01:02:03.250", 3723.25, false},
		{"02:05", 125, false},
		{"42.5", 42.5, false},
		{"", 0, true},
		{"aa:bb", 0, true},
		{"1:2:3:4", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSRT(t *testing.T) {
	content := "1\r\n00:00:00,000 --> 00:00:02,500\r\nGood morning everyone.\r\n\r\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nLet's start with\nthe roadmap.\n\n" +
		"3\nnot a timing line\nignored\n\n" +
		"4\n00:00:06,000 --> 00:00:07,000\n\n"

	got := ParseSRT(content)
	if len(got) != 2 {
		t.Fatalf("ParseSRT() returned %d segments, want 2: %+v", len(got), got)
	}
	if got[0].Text != "Good morning everyone." || got[0].End != 2.5 {
		t.Errorf("segment 0 = %+v", got[0])
	}
	if got[1].Text != "Let's start with the roadmap." || got[1].Start != 2.5 {
		t.Errorf("segment 1 = %+v", got[1])
	}
}

func TestTranscriptRendering(t *testing.T) {
	tr := Transcript{Segments: []Segment{
		{Speaker: "Speaker 1", Start: 0, End: 1.5, Text: "Hello."},
		{Speaker: "Speaker 1", Start: 1.5, End: 3, Text: "Shall we begin?"},
		{Speaker: "Speaker 2", Start: 3, End: 4, Text: "Yes."},
		{Speaker: "Speaker 1", Start: 4, End: 5, Text: "  "},
	}}

	if got := tr.Speakers(); len(got) != 2 || got[0] != "Speaker 1" || got[1] != "Speaker 2" {
		t.Errorf("Speakers() = %v", got)
	}

	wantText := "Speaker 1: Hello. Shall we begin?\n\nSpeaker 2: Yes."
	if got := tr.Text(); got != wantText {
		t.Errorf("Text() = %q, want %q", got, wantText)
	}

	renamed := tr.RenameSpeakers(map[string]string{"Speaker 2": "Alice", "Speaker 1": ""})
	if renamed.Segments[2].Speaker != "Alice" || renamed.Segments[0].Speaker != "Speaker 1" {
		t.Errorf("RenameSpeakers() = %+v", renamed.Segments)
	}
	if tr.Segments[2].Speaker != "Speaker 2" {
		t.Error("RenameSpeakers() modified the original transcript")
	}

	srt := tr.SRT()
	if !strings.HasPrefix(srt, "1\n00:00:00,000 --> 00:00:01,500\nSpeaker 1: Hello.\n\n") {
		t.Errorf("SRT() = %q", srt)
	}
	if strings.Count(srt, "-->") != 3 {
		t.Errorf("SRT() should skip empty segments: %q", srt)
	}
}

func TestParseGeminiSegments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "wrapped object with string times",
			raw:  `{"segments":[{"speaker":"Speaker 1","start":"00:05","end":"00:09","text":"Hi"}]}`,
			want: 1,
		},
		{
			name: "fenced bare array with numeric times",
			raw:  "```json\n[{\"speaker\":\"Speaker 1\",\"start\":1.5,\"end\":3,\"text\":\"A\"},{\"speaker\":\"Speaker 2\",\"start\":3,\"end\":4,\"text\":\"B\"}]\n```",
			want: 2,
		},
		{name: "not json", raw: "Sorry, I cannot help", wantErr: true},
		{name: "only empty text", raw: `{"segments":[{"text":" "}]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGeminiSegments(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGeminiSegments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("segments = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := ParseGeminiSegments(`{"segments":[{"speaker":"Speaker 1","start":"01:05","end":"01:09.5","text":"Hi"}]}`)
	if got[0].Start != 65 || got[0].End != 69.5 {
		t.Errorf("times = %v-%v, want 65-69.5", got[0].Start, got[0].End)
	}
}

type fakeExecutor struct {
	run   func(name string, args []string) (string, error)
	calls [][]string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.run(name, args)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) ExecuteWithInput(ctx context.Context, stdin []byte, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestWhisperTranscribe(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "standup.wav")
	exec := &fakeExecutor{run: func(name string, args []string) (string, error) {
		prefix := argAfter(args, "--output-file")
		srt := "1\n00:00:00,000 --> 00:00:03,000\nWelcome to the standup.\n"
		return "", os.WriteFile(prefix+".srt", []byte(srt), 0644)
	}}
	w := NewWhisper(WhisperOptions{BinaryPath: "whisper-cli", ModelPath: "models/ggml-base.bin", Language: "en", Threads: 4},
		exec, logger.New("error"))

	tr, err := w.Transcribe(context.Background(), Request{AudioPath: audio})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if tr.Service != "whisper" || tr.Model != "ggml-base.bin" {
		t.Errorf("Service/Model = %v/%v", tr.Service, tr.Model)
	}
	if len(tr.Segments) != 1 || tr.Segments[0].Text != "Welcome to the standup." {
		t.Errorf("Segments = %+v", tr.Segments)
	}
	call := exec.calls[0]
	if call[0] != "whisper-cli" || argAfter(call, "-f") != audio || argAfter(call, "-t") != "4" {
		t.Errorf("whisper invoked with %v", call)
	}
}

func TestWhisperTranscribeFailure(t *testing.T) {
	exec := &fakeExecutor{run: func(string, []string) (string, error) {
		return "", errors.New("exit status 1")
	}}
	w := NewWhisper(WhisperOptions{BinaryPath: "whisper-cli"}, exec, logger.New("error"))
	if _, err := w.Transcribe(context.Background(), Request{AudioPath: "/in/x.wav"}); err == nil {
		t.Error("Transcribe() should fail when whisper fails")
	}
}

type fakeGemini struct {
	key       string
	uploads   *[]string
	generate  func(key string) (string, error)
	deletions *int
}

func (f *fakeGemini) Upload(ctx context.Context, r io.Reader, mimeType string) (*genai.File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	*f.uploads = append(*f.uploads, f.key+":"+string(b))
	return &genai.File{Name: "files/abc", URI: "https://example.invalid/files/abc", MIMEType: mimeType, State: genai.FileStateActive}, nil
}

func (f *fakeGemini) WaitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	return file, nil
}

func (f *fakeGemini) Delete(ctx context.Context, name string) error {
	*f.deletions++
	return nil
}

func (f *fakeGemini) Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	return f.generate(f.key)
}

func TestGeminiTranscribeRetriesWithFreshReaderAndNextKey(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "call.m4a")
	if err := os.WriteFile(audio, []byte("AUDIO"), 0644); err != nil {
		t.Fatal(err)
	}

	var uploads []string
	deletions := 0
	factory := func(ctx context.Context, key string) (gemini.Client, error) {
		return &fakeGemini{key: key, uploads: &uploads, deletions: &deletions, generate: func(key string) (string, error) {
			if key == "k1" {
				return "", &retry.StatusError{Code: 429}
			}
			return `{"segments":[{"speaker":"Speaker 1","start":"00:00","end":"00:02","text":"Hello"}]}`, nil
		}}, nil
	}

	g := NewGemini(GeminiOptions{Model: "gemini-2.5-flash", MaxRetries: 3, BaseDelay: time.Millisecond},
		gemini.NewKeyRing([]string{"k1", "k2"}), factory, logger.New("error")).(*geminiTranscriber)
	g.sleep = func(context.Context, time.Duration) error { return nil }

	tr, err := g.Transcribe(context.Background(), Request{AudioPath: audio, MaxSpeakers: 2})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if len(uploads) != 2 || uploads[0] != "k1:AUDIO" || uploads[1] != "k2:AUDIO" {
		t.Errorf("uploads = %v, want full audio re-sent with the next key", uploads)
	}
	if deletions != 2 {
		t.Errorf("deletions = %d, want 2", deletions)
	}
	if tr.Service != "gemini" || len(tr.Segments) != 1 {
		t.Errorf("transcript = %+v", tr)
	}
}

func TestGeminiTranscribePermanentError(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "call.m4a")
	if err := os.WriteFile(audio, []byte("AUDIO"), 0644); err != nil {
		t.Fatal(err)
	}
	calls := 0
	factory := func(ctx context.Context, key string) (gemini.Client, error) {
		calls++
		var uploads []string
		d := 0
		return &fakeGemini{key: key, uploads: &uploads, deletions: &d, generate: func(string) (string, error) {
			return "", &retry.StatusError{Code: 400, Body: "invalid argument"}
		}}, nil
	}
	g := NewGemini(GeminiOptions{MaxRetries: 3}, gemini.NewKeyRing([]string{"k1"}), factory, logger.New("error"))

	_, err := g.Transcribe(context.Background(), Request{AudioPath: audio})
	var se *retry.StatusError
	if !errors.As(err, &se) || se.Code != 400 {
		t.Errorf("Transcribe() error = %v, want the 400 unchanged", err)
	}
	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.MP3":  "audio/mpeg",
		"b.m4a":  "audio/mp4",
		"c.mov":  "video/quicktime",
		"d.flac": "audio/flac",
	}
	for in, want := range tests {
		if got := MIMEType(in); got != want {
			t.Errorf("MIMEType(%q) = %v, want %v", in, got, want)
		}
	}
}
