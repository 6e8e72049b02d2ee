package timeutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseClock parses a "HH:MM" string into hour and minute.
func ParseClock(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

// ParseWeekday accepts English day names ("Monday", "monday") or the digits 0..6 (0=Sunday).
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if d, ok := weekdayNames[v]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", value)
}

// IsValidWeekday reports whether d is one of Sunday..Saturday.
func IsValidWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping wall-clock time across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameDate reports whether a and b fall on the same calendar date in a's location.
func SameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// ParseDateInLocation parses RFC3339 or YYYY-MM-DD input as a calendar date in loc.
// For RFC3339 values the instant is converted into loc before the date is taken.
func ParseDateInLocation(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t.In(loc)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name, treating empty as UTC.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
