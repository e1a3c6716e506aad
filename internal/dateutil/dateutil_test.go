package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayUsesLocalComponents(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*60*60)
	now := time.Date(2024, time.March, 4, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-04", Today(now))
	assert.Equal(t, "2024-03-05", Today(now.UTC()))
}

func TestIsValidDate(t *testing.T) {
	cases := map[string]bool{
		"2024-03-04": true,
		"2024-02-29": true,
		"2023-02-29": false,
		"2024-13-01": false,
		"2024-3-4":   false,
		"":           false,
		"not a date": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsValidDate(in), in)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-28", 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got)

	got, err = AddDays("2024-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got)

	// US DST starts 2024-03-10; civil arithmetic must not skip a day.
	got, err = AddDays("2024-03-09", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", got)

	_, err = AddDays("garbage", 1)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDiffInDays(t *testing.T) {
	d, err := DiffInDays("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 30, d)

	d, err = DiffInDays("2024-03-31", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 30, d, "result is absolute")

	d, err = DiffInDays("2024-03-09", "2024-03-11")
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = DiffInDays("1000-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 374008, d, "centuries apart")

	d, err = DiffInDays("9999-12-31", "0001-01-01")
	require.NoError(t, err)
	assert.Equal(t, 3652058, d)

	_, err = DiffInDays("2024-03-01", "x")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestWeekStart(t *testing.T) {
	cases := map[string]string{
		"2024-03-04": "2024-03-04", // Monday
		"2024-03-06": "2024-03-04", // Wednesday
		"2024-03-10": "2024-03-04", // Sunday
		"2024-03-11": "2024-03-11",
		"2024-01-03": "2024-01-01",
		"2023-01-01": "2022-12-26", // Sunday across a year boundary
	}
	for in, want := range cases {
		got, err := WeekStart(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, time.February)
	assert.Equal(t, "2024-02-01", start)
	assert.Equal(t, "2024-02-29", end)

	start, end = MonthRange(2023, time.December)
	assert.Equal(t, "2023-12-01", start)
	assert.Equal(t, "2023-12-31", end)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, time.March))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestSameMonth(t *testing.T) {
	assert.True(t, SameMonth("2024-03-01", "2024-03-31"))
	assert.False(t, SameMonth("2024-03-01", "2023-03-01"))
	assert.False(t, SameMonth("2024-03-01", "bad"))
}

func TestShortLabel(t *testing.T) {
	assert.Equal(t, "Mar 4", ShortLabel("2024-03-04"))
	assert.Equal(t, "Dec 25", ShortLabel("2024-12-25"))
	assert.Equal(t, "oops", ShortLabel("oops"))
}
