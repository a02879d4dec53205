package backfill

import (
	"errors"
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	now := time.Date(2025, 8, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "single date runs until now",
			input:     "7-1-25",
			wantStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "explicit range covers the whole end day",
			input:     "4-1-25:5-31-25",
			wantStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 5, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "zero padded parts",
			input:     "04-01-25:04-01-25",
			wantStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 4, 1, 23, 59, 59, 999999999, time.UTC),
		},
		{name: "february 30 does not exist", input: "2-30-25", wantErr: true},
		{name: "month 13", input: "13-1-25", wantErr: true},
		{name: "four digit year", input: "7-1-2025", wantErr: true},
		{name: "iso format", input: "2025-07-01", wantErr: true},
		{name: "start in the future", input: "9-1-25", wantErr: true},
		{name: "inverted range", input: "5-31-25:4-1-25", wantErr: true},
		{name: "bad end date", input: "4-1-25:4-31-25", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("ParseRange(%q) error = %v, want ErrInvalidRange", tt.input, err)
				}
				return
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", got.End, tt.wantEnd)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{
		Start: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 30, 23, 59, 59, 999999999, time.UTC),
	}
	tests := []struct {
		at   time.Time
		want bool
	}{
		{r.Start, true},
		{r.End, true},
		{r.Start.Add(-time.Nanosecond), false},
		{r.End.Add(time.Nanosecond), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}
