package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/summarai/pkg/retry"
	"google.golang.org/genai"
)

const summaryPrompt = `You are summarizing the transcript of a recorded conversation titled %q.

Write a detailed summary in %s using markdown:
- Start with a one-sentence overview of the topic
- List the main points in the order they were discussed, attributing them to speakers when names are known
- Add a "Decisions" section and an "Action items" section when the conversation contains any
- Keep technical terms as spoken

Transcript:
---
%s
---`

// Summarize sends the transcript to Gemini and returns the markdown summary.
// Transient failures are retried with the next API key.
func (s *implSummarizer) Summarize(ctx context.Context, title, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript is empty")
	}
	language := s.opts.Language
	if language == "" {
		language = "the language of the transcript"
	}
	prompt := fmt.Sprintf(summaryPrompt, title, language, transcript)

	policy := retry.Policy{
		MaxRetries:  s.opts.MaxRetries,
		BaseDelay:   s.opts.BaseDelay,
		MaxDelay:    s.opts.MaxDelay,
		ShouldRetry: retry.IsTransient,
		Sleep:       s.sleep,
		OnRetry: func(attempt int, err error) {
			_, pos := s.keys.Current()
			s.logger.Warn(ctx, "Summary attempt %d failed with key %d, rotating: %v", attempt, pos, err)
			s.keys.Rotate()
		},
	}

	summary, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
		key, _ := s.keys.Current()
		client, err := s.factory(ctx, key)
		if err != nil {
			return "", err
		}
		return client.Generate(ctx, s.opts.Model, genai.Text(prompt), nil)
	}, policy)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
