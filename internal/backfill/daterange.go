package backfill

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRange wraps every date-range parse failure
var ErrInvalidRange = errors.New("invalid date range")

// DateLayout documents the accepted input, month-day-two-digit-year
const DateLayout = "M-D-YY"

// Range is an inclusive modification-time window
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04"))
}

// ParseRange accepts "M-D-YY" (that day through now) or "M-D-YY:M-D-YY"
// (start of the first day through the end of the second)
func ParseRange(input string, now time.Time) (Range, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Range{}, fmt.Errorf("%w: empty input, expected %s or %s:%s", ErrInvalidRange, DateLayout, DateLayout, DateLayout)
	}

	startText, endText, isRange := strings.Cut(input, ":")
	start, err := parseDate(startText, now.Location())
	if err != nil {
		return Range{}, err
	}
	if start.After(now) {
		return Range{}, fmt.Errorf("%w: start date %s is in the future", ErrInvalidRange, start.Format("2006-01-02"))
	}
	if !isRange {
		return Range{Start: start, End: now}, nil
	}

	endDay, err := parseDate(endText, now.Location())
	if err != nil {
		return Range{}, err
	}
	if endDay.Before(start) {
		return Range{}, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidRange, endDay.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	end := endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return Range{Start: start, End: end}, nil
}

func parseDate(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, "-")
	if len(parts) != 3 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidRange, text, DateLayout)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || len(p) > 2 {
			return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidRange, text, DateLayout)
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], 2000+nums[2]

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if month < 1 || month > 12 || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidRange, text)
	}
	return t, nil
}
