package commands

import (
	"fmt"
	"strings"
	"time"
)

var whenLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02/01/2006 15:04",
}

// ParseWhen reads a due time relative to now. It accepts an absolute date
// and time, "today HH:MM", "tomorrow HH:MM" and "in <duration>".
func ParseWhen(input string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	s := strings.ToLower(trimmed)
	if s == "" {
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due time is empty"}
	}
	loc := now.Location()

	if rest, ok := strings.CutPrefix(s, "in "); ok {
		d, err := time.ParseDuration(strings.ReplaceAll(rest, " ", ""))
		if err != nil || d <= 0 {
			return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid duration: %s", rest)}
		}
		return now.Add(d).Truncate(time.Minute), nil
	}

	for _, day := range []struct {
		word   string
		offset int
	}{{"today", 0}, {"tomorrow", 1}} {
		rest, ok := strings.CutPrefix(s, day.word)
		if !ok {
			continue
		}
		clock, err := time.ParseInLocation("15:04", strings.TrimSpace(rest), loc)
		if err != nil {
			return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid time: %s", strings.TrimSpace(rest))}
		}
		y, m, d := now.Date()
		return time.Date(y, m, d+day.offset, clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}

	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognized due time: %s", input)}
}
