package store

import "time"

// StudyEntry is the study time logged for one calendar date.
type StudyEntry struct {
	ID              string
	OwnerID         string // empty for anonymous, local-only data
	Date            string // YYYY-MM-DD
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (e StudyEntry) Hours() int   { return e.DurationMinutes / 60 }
func (e StudyEntry) Minutes() int { return e.DurationMinutes % 60 }

// Task is a to-do item. A dated task belongs to that day in the daybook; an
// undated one is on the general to-do list.
type Task struct {
	ID          string
	OwnerID     string
	Date        string // YYYY-MM-DD, or empty
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Dated reports whether the task belongs to the daybook.
func (t Task) Dated() bool { return t.Date != "" }

type Setting struct {
	Key   string
	Value string
}

// Setting keys.
const (
	SettingDailyGoal      = "daily_goal"      // minutes
	SettingDefaultMinutes = "default_minutes" // pre-filled log duration
)
