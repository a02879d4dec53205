package transcriber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reSRTTiming = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d{1,2}:\d{2}:\d{2}[,.]\d{1,3})`)

// ParseSRT reads SubRip content into segments. Malformed blocks are skipped.
func ParseSRT(content string) []Segment {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var segments []Segment
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		for i, line := range lines {
			m := reSRTTiming.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			start, err1 := ParseTimestamp(m[1])
			end, err2 := ParseTimestamp(m[2])
			text := strings.TrimSpace(strings.Join(lines[i+1:], " "))
			if err1 != nil || err2 != nil || text == "" {
				break
			}
			segments = append(segments, Segment{Start: start, End: end, Text: text})
			break
		}
	}
	return segments
}

// ParseTimestamp accepts "HH:MM:SS,mmm", "HH:MM:SS.mmm", "MM:SS" or plain
// seconds and returns seconds
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	sec := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, sec, ms)
}
