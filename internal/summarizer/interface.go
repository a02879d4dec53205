package summarizer

import "context"

// Summarizer produces a markdown summary of a transcript
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (string, error)
}
