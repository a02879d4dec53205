package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/summarai/internal/summarizer"
	"github.com/nguyentantai21042004/summarai/internal/transcriber"
)

// writeOutputs writes the markdown summary, the SRT transcript and the two
// docx documents. The returned name is unique within the output directory.
func (p *implProcessor) writeOutputs(ctx context.Context, title string, t transcriber.Transcript, summary string) (string, []string, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return "", nil, Wrap(TypeOutput, "", "create output dir", err)
	}
	name := p.uniqueName(safeName(title))
	base := filepath.Join(p.cfg.OutputDir, name)

	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(p.markdown(title, t, summary)), 0644); err != nil {
		return "", nil, Wrap(TypeOutput, "markdown", "write", err)
	}
	outputs := []string{mdPath}

	srtPath := base + ".srt"
	if err := os.WriteFile(srtPath, []byte(t.SRT()), 0644); err != nil {
		return "", nil, Wrap(TypeOutput, "srt", "write", err)
	}
	outputs = append(outputs, srtPath)

	summaryDocx := base + ".summary.docx"
	if err := summarizer.WriteSummaryDocx(title, summary, summaryDocx); err != nil {
		return "", nil, Wrap(TypeOutput, "docx", "write summary", err)
	}
	transcriptDocx := base + ".transcript.docx"
	if err := summarizer.WriteTranscriptDocx(title, t.Text(), transcriptDocx); err != nil {
		return "", nil, Wrap(TypeOutput, "docx", "write transcript", err)
	}
	outputs = append(outputs, summaryDocx, transcriptDocx)

	p.logger.Debug(ctx, "Wrote %d outputs for %s", len(outputs), name)
	return name, outputs, nil
}

func (p *implProcessor) markdown(title string, t transcriber.Transcript, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_%s · %s", p.now().Format("2006-01-02 15:04"), t.Service)
	if t.Model != "" {
		fmt.Fprintf(&b, " (%s)", t.Model)
	}
	if speakers := t.Speakers(); len(speakers) > 0 {
		fmt.Fprintf(&b, " · %s", strings.Join(speakers, ", "))
	}
	b.WriteString("_\n\n## Summary\n\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\n## Transcript\n\n")
	b.WriteString(t.Text())
	b.WriteString("\n")
	return b.String()
}

// uniqueName appends -2, -3... when an earlier recording with the same name
// already has outputs
func (p *implProcessor) uniqueName(name string) string {
	candidate := name
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(p.cfg.OutputDir, candidate+".md")); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
}

// archive uploads outputs when object storage is configured. Upload failures
// are logged; the local outputs remain the source of truth.
func (p *implProcessor) archive(ctx context.Context, group string, outputs []string) []string {
	if p.archiver == nil {
		return nil
	}
	var uris []string
	for _, path := range outputs {
		uri, err := p.archiver.Upload(ctx, path, group)
		if err != nil {
			p.logger.Warn(ctx, "Archive upload failed for %s: %v", path, err)
			continue
		}
		uris = append(uris, uri)
	}
	return uris
}
