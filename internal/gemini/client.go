package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/genai"
)

const filePollInterval = 2 * time.Second

type implClient struct {
	client *genai.Client
}

// NewFactory returns a Factory backed by the Gemini Developer API
func NewFactory() Factory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		return &implClient{client: client}, nil
	}
}

func (c *implClient) Upload(ctx context.Context, r io.Reader, mimeType string) (*genai.File, error) {
	file, err := c.client.Files.Upload(ctx, r, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return file, nil
}

// WaitActive polls an uploaded file until the service has finished
// processing it
func (c *implClient) WaitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(filePollInterval):
		}
		next, err := c.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("get file state: %w", err)
		}
		file = next
	}
	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("file %s failed processing", file.Name)
	}
	return file, nil
}

func (c *implClient) Delete(ctx context.Context, name string) error {
	if _, err := c.client.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (c *implClient) Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return ResponseText(result)
}

// ResponseText joins the text parts of the first candidate
func ResponseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text.String(), nil
}
