package summarizer

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

type fakeClient struct {
	key      string
	generate func(key, prompt string) (string, error)
}

func (f *fakeClient) Upload(ctx context.Context, r io.Reader, mimeType string) (*genai.File, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) WaitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	return file, nil
}

func (f *fakeClient) Delete(ctx context.Context, name string) error { return nil }

func (f *fakeClient) Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	return f.generate(f.key, contents[0].Parts[0].Text)
}

func TestSummarizeRotatesKeyOnRateLimit(t *testing.T) {
	var keysUsed []string
	var prompt string
	factory := func(ctx context.Context, key string) (gemini.Client, error) {
		return &fakeClient{key: key, generate: func(key, p string) (string, error) {
			keysUsed = append(keysUsed, key)
			prompt = p
			if key == "k1" {
				return "", &retry.StatusError{Code: 429, Body: "RESOURCE_EXHAUSTED"}
			}
			return "\n# Weekly sync\n\n- Shipped the ledger\n", nil
		}}, nil
	}

	s := New(Options{MaxRetries: 2, BaseDelay: time.Millisecond}, gemini.NewKeyRing([]string{"k1", "k2"}), factory, logger.New("error")).(*implSummarizer)
	s.sleep = func(context.Context, time.Duration) error { return nil }

	got, err := s.Summarize(context.Background(), "weekly-sync", "Speaker 1: We shipped the ledger.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "# Weekly sync\n\n- Shipped the ledger" {
		t.Errorf("Summarize() = %q", got)
	}
	if len(keysUsed) != 2 || keysUsed[0] != "k1" || keysUsed[1] != "k2" {
		t.Errorf("keys used = %v, want [k1 k2]", keysUsed)
	}
	if !strings.Contains(prompt, "We shipped the ledger.") || !strings.Contains(prompt, `"weekly-sync"`) {
		t.Errorf("prompt missing transcript or title: %s", prompt)
	}
}

func TestSummarizeErrors(t *testing.T) {
	calls := 0
	factory := func(ctx context.Context, key string) (gemini.Client, error) {
		return &fakeClient{key: key, generate: func(string, string) (string, error) {
			calls++
			return "", &retry.StatusError{Code: 403, Body: "API key not valid"}
		}}, nil
	}
	s := New(Options{MaxRetries: 3}, gemini.NewKeyRing([]string{"k1"}), factory, logger.New("error"))

	if _, err := s.Summarize(context.Background(), "t", "   "); err == nil {
		t.Error("Summarize() of an empty transcript should fail")
	}
	if calls != 0 {
		t.Errorf("empty transcript reached Gemini")
	}

	_, err := s.Summarize(context.Background(), "t", "hello")
	var se *retry.StatusError
	if !errors.As(err, &se) || se.Code != 403 {
		t.Errorf("Summarize() error = %v, want 403", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (403 is permanent)", calls)
	}
}

func TestWriteDocx(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "sync.summary.docx")
	transcriptPath := filepath.Join(dir, "sync.transcript.docx")

	md := "# Weekly sync\n\n## Decisions\n- Ship **Friday**\n---\nPlain closing line"
	if err := WriteSummaryDocx("Weekly sync", md, summaryPath); err != nil {
		t.Fatalf("WriteSummaryDocx() error = %v", err)
	}
	transcript := "Alice: Morning.\n\nSpeaker 2: Hi Alice.\nno speaker here"
	if err := WriteTranscriptDocx("Weekly sync", transcript, transcriptPath); err != nil {
		t.Fatalf("WriteTranscriptDocx() error = %v", err)
	}

	for _, p := range []string{summaryPath, transcriptPath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestStripInline(t *testing.T) {
	if got := stripInline("**bold** and `code` and __under__"); got != "bold and code and under" {
		t.Errorf("stripInline() = %q", got)
	}
}
