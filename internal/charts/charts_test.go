package charts

import (
	"testing"

	"github.com/sadopc/minutemind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(date string, minutes int) store.StudyEntry {
	return store.StudyEntry{ID: date, Date: date, DurationMinutes: minutes}
}

func TestDailyWindow(t *testing.T) {
	entries := []store.StudyEntry{
		entry("2024-03-04", 90),
		entry("2024-02-10", 30),
		entry("2024-02-03", 600), // outside the window
		entry("2024-03-05", 45),  // after the reference date
	}
	s, err := Daily(entries, "2024-03-04")
	require.NoError(t, err)

	require.Equal(t, 30, s.Len())
	assert.Equal(t, "Feb 4", s.Labels[0])
	assert.Equal(t, "Mar 4", s.Labels[29])
	assert.Equal(t, 1.5, s.Values[29])
	assert.Equal(t, 0.0, s.Values[28])

	// Hours in the window times 60 match the minutes of entries in the window.
	assert.InDelta(t, 120.0, s.Sum()*60, 0.5)
}

func TestDailyWindowSumProperty(t *testing.T) {
	entries := []store.StudyEntry{
		entry("2024-01-02", 17),
		entry("2024-01-20", 33),
		entry("2024-01-31", 61),
		entry("2024-02-01", 5),
	}
	s, err := Daily(entries, "2024-02-01")
	require.NoError(t, err)
	assert.InDelta(t, 33+61+5, s.Sum()*60, 0.5)
}

func TestDailyInvalidReference(t *testing.T) {
	_, err := Daily(nil, "2024-02-31")
	assert.Error(t, err)
}

func TestCumulative(t *testing.T) {
	entries := []store.StudyEntry{
		entry("2024-03-03", 120),
		entry("2024-03-01", 60),
	}
	s := Cumulative(entries)

	assert.Equal(t, []float64{1.0, 3.0}, s.Values)
	assert.Equal(t, []string{"Mar 1", "Mar 3"}, s.Labels)
	assert.Equal(t, "2024-03-03", entries[0].Date, "input order must not change")
}

func TestCumulativeRoundsToTwoPlaces(t *testing.T) {
	s := Cumulative([]store.StudyEntry{entry("2024-03-01", 10), entry("2024-03-02", 10)})
	assert.Equal(t, []float64{0.17, 0.33}, s.Values)
}

func TestCumulativeEmpty(t *testing.T) {
	s := Cumulative(nil)
	assert.Zero(t, s.Len())
}

func TestWeeklyKeepsFiveMostRecentOldestFirst(t *testing.T) {
	// Mondays across six distinct weeks.
	entries := []store.StudyEntry{
		entry("2024-02-05", 60),
		entry("2024-02-12", 60),
		entry("2024-02-19", 60),
		entry("2024-02-26", 60),
		entry("2024-03-04", 60),
		entry("2024-03-11", 90),
		entry("2024-03-12", 30),
	}
	s := Weekly(entries)

	require.Equal(t, 5, s.Len())
	assert.Equal(t, "Feb 12 - Feb 18", s.Labels[0])
	assert.Equal(t, "Mar 11 - Mar 17", s.Labels[4])
	assert.Equal(t, 2.0, s.Values[4])
}

func TestWeeklySundayBelongsToPreviousWeek(t *testing.T) {
	s := Weekly([]store.StudyEntry{entry("2024-03-10", 60), entry("2024-03-04", 30)})
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "Mar 4 - Mar 10", s.Labels[0])
	assert.Equal(t, 1.5, s.Values[0])
}

func TestTrend(t *testing.T) {
	s, err := Trend([]store.StudyEntry{entry("2024-02-03", 45), entry("2024-03-01", 60)}, "2024-02-10")
	require.NoError(t, err)

	require.Equal(t, 29, s.Len())
	assert.Equal(t, "1", s.Labels[0])
	assert.Equal(t, "29", s.Labels[28])
	assert.Equal(t, 0.8, s.Values[2])
	assert.Equal(t, 0.0, s.Values[28])
}

func TestTrendLabel(t *testing.T) {
	assert.Equal(t, "Mar 4", trendLabel("2024-03-04", 4, 15))
	assert.Equal(t, "4", trendLabel("2024-03-04", 4, 31))
}

func TestBuild(t *testing.T) {
	entries := []store.StudyEntry{
		entry("2024-03-01", 90),
		entry("2024-03-02", 30),
		entry("2024-03-04", 60),
		{ID: "bad", Date: "garbage", DurationMinutes: 999},
	}
	set, err := Build(entries, "2024-03-04")
	require.NoError(t, err)

	assert.Equal(t, 30, set.Daily.Len())
	assert.Equal(t, []float64{1.5, 2.0, 3.0}, set.Cumulative.Values)
	assert.Equal(t, 2, set.Weekly.Len())
	assert.Equal(t, 31, set.Trend.Len())
	assert.Equal(t, set.Weekly, set.Get(KindWeekly))
}

func TestBuildInvalidReference(t *testing.T) {
	_, err := Build(nil, "")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds {
		assert.NotEqual(t, "Unknown", k.String())
	}
}
