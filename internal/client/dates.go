package client

import (
	"fmt"
	"strings"
	"time"
)

// A due date given without a time of day lands at the end of that day.
const (
	endOfDayHour   = 23
	endOfDayMinute = 59
)

// ParseDueDate reads "today", "tomorrow", "2006-01-02 15:04" and
// "2006-01-02" in now's location.
func ParseDueDate(raw string, now time.Time) (time.Time, error) {
	loc := now.Location()
	value := strings.ToLower(strings.TrimSpace(raw))
	y, m, d := now.Date()

	switch value {
	case "today":
		return time.Date(y, m, d, endOfDayHour, endOfDayMinute, 0, 0, loc), nil
	case "tomorrow":
		return time.Date(y, m, d+1, endOfDayHour, endOfDayMinute, 0, 0, loc), nil
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04", value, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due date %q: %w", raw, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), endOfDayHour, endOfDayMinute, 0, 0, loc), nil
}
