package media

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFilterAccept(t *testing.T) {
	f := NewFilter(
		[]string{".m4a", "MP3", ".wav"},
		[]string{".", "~$", "draft-*"},
		[]string{"*.part.*"},
		[]string{"processed", ".Trash"},
	)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"supported audio", "/rec/meeting.m4a", true},
		{"uppercase extension", "/rec/MEETING.MP3", true},
		{"extension without dot in config", "/rec/call.mp3", true},
		{"unsupported extension", "/rec/notes.txt", false},
		{"no extension", "/rec/README", false},
		{"lock sentinel", "/rec/meeting.m4a.processing", false},
		{"hidden file prefix", "/rec/.meeting.m4a", false},
		{"office temp prefix", "/rec/~$meeting.m4a", false},
		{"wildcard prefix", "/rec/draft-001.m4a", false},
		{"wildcard pattern", "/rec/upload.part.m4a", false},
		{"ignored ancestor", "/rec/processed/meeting.m4a", false},
		{"ignored ancestor substring", "/rec/old-processed-2024/meeting.m4a", false},
		{"ignored deep ancestor", "/home/u/.Trash/x/meeting.wav", false},
		{"similar but allowed dir", "/rec/process/meeting.wav", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Accept(filepath.FromSlash(tt.path)); got != tt.want {
				t.Errorf("Accept(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewCandidate(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	c := NewCandidate(filepath.FromSlash("/rec/Meeting.M4A"), "/rec", now)
	if c.Extension != ".m4a" {
		t.Errorf("Extension = %v, want .m4a", c.Extension)
	}
	if !filepath.IsAbs(c.AbsolutePath) {
		t.Errorf("AbsolutePath = %v, want absolute", c.AbsolutePath)
	}
	if c.DirectoryOrigin != "/rec" || !c.DiscoveredAt.Equal(now) {
		t.Errorf("unexpected candidate %+v", c)
	}
}
