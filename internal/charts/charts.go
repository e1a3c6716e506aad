// Package charts builds the labelled series drawn on the Charts tab.
package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/insights"
	"github.com/sadopc/minutemind/internal/store"
)

const (
	dailyWindow = 30
	weeklyLimit = 5
	// Months longer than this get bare day numbers on the trend axis.
	trendFullLabelMaxDays = 15
)

// Series is one chart: Labels[i] names Values[i]. Values are hours.
type Series struct {
	Labels []string
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

// Sum adds up all values.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// Set holds the four series rebuilt on every refresh.
type Set struct {
	Daily      Series
	Cumulative Series
	Weekly     Series
	Trend      Series
}

// Kind identifies one series in a Set.
type Kind int

const (
	KindDaily Kind = iota
	KindCumulative
	KindWeekly
	KindTrend
)

// Kinds lists every series in display order.
var Kinds = []Kind{KindDaily, KindCumulative, KindWeekly, KindTrend}

func (k Kind) String() string {
	switch k {
	case KindDaily:
		return "Daily (last 30 days)"
	case KindCumulative:
		return "Cumulative"
	case KindWeekly:
		return "Weekly"
	case KindTrend:
		return "Monthly Trend"
	default:
		return "Unknown"
	}
}

// Get returns the series for k.
func (s Set) Get(k Kind) Series {
	switch k {
	case KindCumulative:
		return s.Cumulative
	case KindWeekly:
		return s.Weekly
	case KindTrend:
		return s.Trend
	default:
		return s.Daily
	}
}

// Build computes all four series for referenceDate.
func Build(entries []store.StudyEntry, referenceDate string) (Set, error) {
	if !dateutil.IsValidDate(referenceDate) {
		return Set{}, fmt.Errorf("build charts: %w %q", dateutil.ErrInvalidDate, referenceDate)
	}
	clean, _ := insights.Sanitize(entries)

	daily, err := Daily(clean, referenceDate)
	if err != nil {
		return Set{}, err
	}
	trend, err := Trend(clean, referenceDate)
	if err != nil {
		return Set{}, err
	}
	return Set{
		Daily:      daily,
		Cumulative: Cumulative(clean),
		Weekly:     Weekly(clean),
		Trend:      trend,
	}, nil
}

// Daily returns 30 points ending at referenceDate, one per calendar day.
func Daily(entries []store.StudyEntry, referenceDate string) (Series, error) {
	if !dateutil.IsValidDate(referenceDate) {
		return Series{}, fmt.Errorf("daily series: %w %q", dateutil.ErrInvalidDate, referenceDate)
	}
	minutes := minutesByDate(entries)

	s := Series{
		Labels: make([]string, 0, dailyWindow),
		Values: make([]float64, 0, dailyWindow),
	}
	for i := dailyWindow - 1; i >= 0; i-- {
		date, _ := dateutil.AddDays(referenceDate, -i)
		s.Labels = append(s.Labels, dateutil.ShortLabel(date))
		s.Values = append(s.Values, round(float64(minutes[date])/60, 2))
	}
	return s, nil
}

// Cumulative returns a running total of hours with one point per studied
// day, oldest first. Days without entries add no point.
func Cumulative(entries []store.StudyEntry) Series {
	minutes := minutesByDate(entries)
	dates := sortedDates(minutes)

	s := Series{
		Labels: make([]string, 0, len(dates)),
		Values: make([]float64, 0, len(dates)),
	}
	running := 0
	for _, d := range dates {
		running += minutes[d]
		s.Labels = append(s.Labels, dateutil.ShortLabel(d))
		s.Values = append(s.Values, round(float64(running)/60, 2))
	}
	return s
}

// Weekly sums hours per Monday-started week and keeps the five most recent
// weeks that have data, oldest first.
func Weekly(entries []store.StudyEntry) Series {
	byWeek := make(map[string]int)
	for date, m := range minutesByDate(entries) {
		ws, _ := dateutil.WeekStart(date)
		byWeek[ws] += m
	}
	weeks := sortedDates(byWeek)
	if len(weeks) > weeklyLimit {
		weeks = weeks[len(weeks)-weeklyLimit:]
	}

	s := Series{
		Labels: make([]string, 0, len(weeks)),
		Values: make([]float64, 0, len(weeks)),
	}
	for _, ws := range weeks {
		end, _ := dateutil.AddDays(ws, 6)
		s.Labels = append(s.Labels, dateutil.ShortLabel(ws)+" - "+dateutil.ShortLabel(end))
		s.Values = append(s.Values, round(float64(byWeek[ws])/60, 1))
	}
	return s
}

// Trend returns one point per day of referenceDate's month.
func Trend(entries []store.StudyEntry, referenceDate string) (Series, error) {
	ref, err := dateutil.Parse(referenceDate)
	if err != nil {
		return Series{}, fmt.Errorf("trend series: %w", err)
	}
	minutes := minutesByDate(entries)
	n := dateutil.DaysInMonth(ref.Year(), ref.Month())
	start, _ := dateutil.MonthRange(ref.Year(), ref.Month())

	s := Series{
		Labels: make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
	for day := 1; day <= n; day++ {
		date, _ := dateutil.AddDays(start, day-1)
		s.Labels = append(s.Labels, trendLabel(date, day, n))
		s.Values = append(s.Values, round(float64(minutes[date])/60, 1))
	}
	return s, nil
}

func trendLabel(date string, day, daysInMonth int) string {
	if daysInMonth <= trendFullLabelMaxDays {
		return dateutil.ShortLabel(date)
	}
	return strconv.Itoa(day)
}

// minutesByDate sums minutes per valid date, skipping malformed entries.
func minutesByDate(entries []store.StudyEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.DurationMinutes < 0 || !dateutil.IsValidDate(e.Date) {
			continue
		}
		out[e.Date] += e.DurationMinutes
	}
	return out
}

func sortedDates(m map[string]int) []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
