// Package dateutil implements calendar arithmetic on YYYY-MM-DD date strings.
//
// Dates are civil dates with no time component. Arithmetic is anchored at
// midnight UTC, so a daylight saving transition in the caller's zone can never
// shift a result by a day. Only Today looks at a wall clock, and it reads the
// local components of the time it is given.
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the storage format for calendar dates.
const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Today returns now's calendar date in now's own location.
func Today(now time.Time) string {
	y, m, d := now.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse returns the civil date as midnight UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
	}
	return t, nil
}

func IsValidDate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays shifts date by n days; n may be negative.
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return format(t.AddDate(0, 0, n)), nil
}

// DiffInDays returns the absolute number of days between a and b.
func DiffInDays(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	// Unix seconds, since time.Duration saturates after about 292 years.
	days := int((tb.Unix() - ta.Unix()) / 86400)
	if days < 0 {
		days = -days
	}
	return days, nil
}

// WeekStart returns the Monday on or before date. Sunday belongs to the week
// that started six days earlier.
func WeekStart(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	weekday := int(t.Weekday())
	daysBack := weekday - 1
	if weekday == 0 {
		daysBack = 6
	}
	return format(t.AddDate(0, 0, -daysBack)), nil
}

// MonthRange returns the first and last calendar dates of the month.
func MonthRange(year int, month time.Month) (start, end string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return format(first), format(last)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameMonth reports whether two valid dates fall in the same calendar month.
func SameMonth(a, b string) bool {
	ta, err := Parse(a)
	if err != nil {
		return false
	}
	tb, err := Parse(b)
	if err != nil {
		return false
	}
	return ta.Year() == tb.Year() && ta.Month() == tb.Month()
}

// ShortLabel renders a date as "Mar 4". Invalid input is returned unchanged.
func ShortLabel(date string) string {
	t, err := Parse(date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// Before reports whether a sorts before b. Both must be in Layout, where
// lexical order is calendar order.
func Before(a, b string) bool {
	return a < b
}
