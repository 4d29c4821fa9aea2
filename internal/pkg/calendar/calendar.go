// Package calendar holds the wire formats for calendar days and wall-clock times.
package calendar

import (
	"fmt"
	"time"
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	TimeFormat = "15:04"      // HH:MM, 24-hour
)

// ParseDate parses a YYYY-MM-DD calendar day and returns it at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseClock parses a 24-hour HH:MM wall-clock time into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateFormat)
}

// AddDays shifts a YYYY-MM-DD day by n days. Invalid input is returned unchanged.
func AddDays(date string, n int) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(DateFormat)
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
