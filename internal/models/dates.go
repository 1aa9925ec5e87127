package models

import "time"

// DateLayout is the calendar date format used in save strings and on the command line.
const DateLayout = "2006-01-02"

var clock = time.Now

// SetClock replaces the source of the current time and returns a function restoring the previous one.
func SetClock(now func() time.Time) (restore func()) {
	prev := clock
	clock = now
	return func() { clock = prev }
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	return Date(clock())
}

// Date truncates t to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// MonthsBetween returns the number of complete calendar months from a to b,
// truncated toward zero. It is negative when b is before a.
func MonthsBetween(a, b time.Time) int {
	a, b = Date(a), Date(b)
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	switch {
	case months > 0 && b.Day() < a.Day():
		months--
	case months < 0 && b.Day() > a.Day():
		months++
	}
	return months
}
