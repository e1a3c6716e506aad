package store

import (
	"context"
	"errors"
	"sort"
)

// Errors returned by EntryStore implementations. Callers match them with
// errors.Is; the wrapped message carries the operation and cause.
var (
	ErrUnavailable = errors.New("store-unavailable")
	ErrInvalidDate = errors.New("invalid-date")
	ErrConstraint  = errors.New("constraint-violation")
	ErrNotFound    = errors.New("not-found")
)

// EntryStore is CRUD over study entries keyed by (owner, date).
//
// CreateOrMergeEntry must be a single atomic upsert: a second create for the
// same owner and date adds to the stored duration instead of inserting a row.
type EntryStore interface {
	CreateOrMergeEntry(ctx context.Context, date string, durationMinutes int, ownerID string) (*StudyEntry, error)
	ListEntries(ctx context.Context, ownerID string) ([]StudyEntry, error)
	UpdateEntry(ctx context.Context, id, date string, durationMinutes int) (*StudyEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	Close() error
}

// TaskStore is CRUD over to-do list and daybook tasks.
//
// ListTasks with an empty date returns the undated to-do list, newest first.
// With a date it returns that day's tasks in the order they were added.
type TaskStore interface {
	CreateTask(ctx context.Context, ownerID, date, title, description string) (*Task, error)
	ListTasks(ctx context.Context, ownerID, date string) ([]Task, error)
	// TaskDates returns the distinct days in [from, to] that have tasks, ascending.
	TaskDates(ctx context.Context, ownerID, from, to string) ([]string, error)
	UpdateTask(ctx context.Context, id, title, description string) (*Task, error)
	ToggleTask(ctx context.Context, id string) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Backend is a store holding both entries and tasks. The configured backend
// serves both so they always live side by side.
type Backend interface {
	EntryStore
	TaskStore
}

// Backend names accepted by configuration.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// SortByDateDesc orders entries newest first, in place.
func SortByDateDesc(entries []StudyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}
