package store

import (
	"context"

	"github.com/sadopc/minutemind/internal/observability"
)

// instrumented counts every call on the wrapped store by operation and
// outcome.
type instrumented struct {
	inner   EntryStore
	metrics *observability.Metrics
}

// Instrument wraps inner so each call is recorded in m. A nil m returns inner
// unchanged.
func Instrument(inner EntryStore, m *observability.Metrics) EntryStore {
	if m == nil {
		return inner
	}
	return &instrumented{inner: inner, metrics: m}
}

func (s *instrumented) CreateOrMergeEntry(ctx context.Context, date string, durationMinutes int, ownerID string) (*StudyEntry, error) {
	e, err := s.inner.CreateOrMergeEntry(ctx, date, durationMinutes, ownerID)
	s.metrics.RecordStoreOp("create", err)
	// A returned total above the submitted minutes means the row already existed.
	if err == nil && e.DurationMinutes != durationMinutes {
		s.metrics.RecordMerge()
	}
	return e, err
}

func (s *instrumented) ListEntries(ctx context.Context, ownerID string) ([]StudyEntry, error) {
	entries, err := s.inner.ListEntries(ctx, ownerID)
	s.metrics.RecordStoreOp("list", err)
	return entries, err
}

func (s *instrumented) UpdateEntry(ctx context.Context, id, date string, durationMinutes int) (*StudyEntry, error) {
	e, err := s.inner.UpdateEntry(ctx, id, date, durationMinutes)
	s.metrics.RecordStoreOp("update", err)
	return e, err
}

func (s *instrumented) DeleteEntry(ctx context.Context, id string) error {
	err := s.inner.DeleteEntry(ctx, id)
	s.metrics.RecordStoreOp("delete", err)
	return err
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}

type instrumentedTasks struct {
	inner   TaskStore
	metrics *observability.Metrics
}

// InstrumentTasks is Instrument for task calls, recorded under "task_*"
// operations.
func InstrumentTasks(inner TaskStore, m *observability.Metrics) TaskStore {
	if m == nil {
		return inner
	}
	return &instrumentedTasks{inner: inner, metrics: m}
}

func (s *instrumentedTasks) CreateTask(ctx context.Context, ownerID, date, title, description string) (*Task, error) {
	t, err := s.inner.CreateTask(ctx, ownerID, date, title, description)
	s.metrics.RecordStoreOp("task_create", err)
	return t, err
}

func (s *instrumentedTasks) ListTasks(ctx context.Context, ownerID, date string) ([]Task, error) {
	tasks, err := s.inner.ListTasks(ctx, ownerID, date)
	s.metrics.RecordStoreOp("task_list", err)
	return tasks, err
}

func (s *instrumentedTasks) TaskDates(ctx context.Context, ownerID, from, to string) ([]string, error) {
	dates, err := s.inner.TaskDates(ctx, ownerID, from, to)
	s.metrics.RecordStoreOp("task_dates", err)
	return dates, err
}

func (s *instrumentedTasks) UpdateTask(ctx context.Context, id, title, description string) (*Task, error) {
	t, err := s.inner.UpdateTask(ctx, id, title, description)
	s.metrics.RecordStoreOp("task_update", err)
	return t, err
}

func (s *instrumentedTasks) ToggleTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.inner.ToggleTask(ctx, id)
	s.metrics.RecordStoreOp("task_toggle", err)
	return t, err
}

func (s *instrumentedTasks) DeleteTask(ctx context.Context, id string) error {
	err := s.inner.DeleteTask(ctx, id)
	s.metrics.RecordStoreOp("task_delete", err)
	return err
}
