package processor

import (
	"context"

	"github.com/nguyentantai21042004/summarai/internal/speaker"
	"github.com/nguyentantai21042004/summarai/internal/transcriber"
)

// identifySpeakers replaces generic labels with enrolled names. Any failure
// keeps the generic labels.
func (p *implProcessor) identifySpeakers(ctx context.Context, audioPath string, t transcriber.Transcript) transcriber.Transcript {
	if p.matcher == nil {
		p.logger.Warn(ctx, "Speaker identification requested but no voice matcher is configured")
		return t
	}
	if len(t.Speakers()) == 0 {
		return t
	}

	spans := make([]speaker.Segment, 0, len(t.Segments))
	for _, s := range t.Segments {
		spans = append(spans, speaker.Segment{SpeakerID: s.Speaker, Start: s.Start, End: s.End})
	}
	segments, labels := speaker.SegmentsFromLabels(spans)

	match, err := p.matcher.Identify(ctx, audioPath, segments)
	if err != nil {
		p.logger.Warn(ctx, "Speaker identification failed, keeping generic labels: %v", err)
		return t
	}
	if match.Message != "" {
		p.logger.Info(ctx, "Voice matcher: %s", match.Message)
	}

	names := make(map[string]string, len(match.Names))
	for id, name := range match.Names {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		names[label] = name
		p.logger.Info(ctx, "Identified %s as %s (confidence %.2f)", label, name, match.Confidence[id])
	}
	return t.RenameSpeakers(names)
}
