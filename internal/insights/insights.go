// Package insights turns a list of study entries into monthly metrics.
//
// Every function here is pure: input slices are never modified and the same
// input always yields the same output.
package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/store"
)

// Monthly holds the aggregates for one calendar month.
type Monthly struct {
	Year        int
	Month       time.Month
	DaysInMonth int

	TotalMinutes         int
	DaysStudied          int
	StudyPercentage      int
	DailyAverageMinutes  float64
	WeeklyAverageMinutes float64
	LongestStreak        int
	CurrentStreak        int
}

// Compute aggregates the entries that fall in referenceDate's month. Streaks
// are measured up to and including referenceDate. The only error is an
// invalid referenceDate; malformed entries are dropped.
func Compute(entries []store.StudyEntry, referenceDate string) (Monthly, error) {
	ref, err := dateutil.Parse(referenceDate)
	if err != nil {
		return Monthly{}, fmt.Errorf("compute insights: %w", err)
	}

	m := Monthly{
		Year:        ref.Year(),
		Month:       ref.Month(),
		DaysInMonth: dateutil.DaysInMonth(ref.Year(), ref.Month()),
	}

	clean, _ := Sanitize(entries)
	var month []store.StudyEntry
	for _, e := range clean {
		if dateutil.SameMonth(e.Date, referenceDate) {
			month = append(month, e)
		}
	}
	if len(month) == 0 {
		return m, nil
	}

	weeks := make(map[string]struct{})
	for _, e := range month {
		m.TotalMinutes += e.DurationMinutes
		ws, _ := dateutil.WeekStart(e.Date)
		weeks[ws] = struct{}{}
	}
	m.DaysStudied = len(month)
	m.StudyPercentage = int(math.Round(100 * float64(m.DaysStudied) / float64(m.DaysInMonth)))
	m.DailyAverageMinutes = float64(m.TotalMinutes) / float64(m.DaysStudied)
	m.WeeklyAverageMinutes = float64(m.TotalMinutes) / float64(len(weeks))

	m.LongestStreak, m.CurrentStreak = Streaks(month, referenceDate)
	return m, nil
}

// Streaks returns the longest and current runs of consecutive studied days in
// referenceDate's month, looking no further than referenceDate. Entries from
// other months are ignored.
//
// The current streak ends at referenceDate, so it is 0 when that day has no
// entry.
func Streaks(entries []store.StudyEntry, referenceDate string) (longest, current int) {
	ref, err := dateutil.Parse(referenceDate)
	if err != nil {
		return 0, 0
	}

	studied := make(map[int]bool)
	for _, e := range entries {
		t, err := dateutil.Parse(e.Date)
		if err != nil || t.Year() != ref.Year() || t.Month() != ref.Month() {
			continue
		}
		studied[t.Day()] = true
	}

	run := 0
	for day := 1; day <= ref.Day(); day++ {
		if studied[day] {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}

	for day := ref.Day(); day >= 1 && studied[day]; day-- {
		current++
	}
	return longest, current
}

// ReferenceFor picks the date to measure a month against: today while the
// month is in progress, otherwise the month's last day. Future months
// resolve to their first day.
func ReferenceFor(year int, month time.Month, today string) string {
	start, end := dateutil.MonthRange(year, month)
	switch {
	case dateutil.Before(end, today):
		return end
	case dateutil.Before(today, start):
		return start
	default:
		return today
	}
}

// FormatMinutes renders a duration as "Xh Ym". The total is rounded before
// the split so the minutes part is always below 60.
func FormatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
