package gemini

import (
	"context"
	"io"

	"google.golang.org/genai"
)

// Client is the subset of the Gemini API the pipeline uses
type Client interface {
	Upload(ctx context.Context, r io.Reader, mimeType string) (*genai.File, error)
	WaitActive(ctx context.Context, file *genai.File) (*genai.File, error)
	Delete(ctx context.Context, name string) error
	Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error)
}

// Factory creates a Client bound to one API key
type Factory func(ctx context.Context, apiKey string) (Client, error)
