package transcriber

import (
	"fmt"
	"strings"
)

// Segment is one utterance. Speaker is empty when the service does not
// diarize.
type Segment struct {
	Speaker string  `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Transcript is the output of a Transcriber
type Transcript struct {
	Segments []Segment
	Service  string
	Model    string
}

// Speakers returns the distinct speaker labels in order of first appearance
func (t Transcript) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.Segments {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		out = append(out, s.Speaker)
	}
	return out
}

// RenameSpeakers returns a copy with labels replaced by names from mapping.
// Labels without a mapping are kept.
func (t Transcript) RenameSpeakers(mapping map[string]string) Transcript {
	out := t
	out.Segments = make([]Segment, len(t.Segments))
	for i, s := range t.Segments {
		if name, ok := mapping[s.Speaker]; ok && name != "" {
			s.Speaker = name
		}
		out.Segments[i] = s
	}
	return out
}

// Text renders the transcript as plain lines, prefixed with the speaker
// when known. Consecutive segments by the same speaker are merged.
func (t Transcript) Text() string {
	var b strings.Builder
	prev := ""
	for i, s := range t.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		switch {
		case s.Speaker == "":
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		case s.Speaker == prev && i > 0:
			b.WriteString(" ")
			b.WriteString(text)
		default:
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%s: %s", s.Speaker, text)
		}
		prev = s.Speaker
	}
	return b.String()
}

// SRT renders the transcript as SubRip subtitles
func (t Transcript) SRT() string {
	var b strings.Builder
	n := 0
	for _, s := range t.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		n++
		if s.Speaker != "" {
			text = s.Speaker + ": " + text
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", n, formatSRTTime(s.Start), formatSRTTime(s.End), text)
	}
	return b.String()
}
