package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sadopc/minutemind/internal/observability"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s EntryStore, date string, minutes int, owner string) *StudyEntry {
	t.Helper()
	e, err := s.CreateOrMergeEntry(context.Background(), date, minutes, owner)
	if err != nil {
		t.Fatalf("create %s: %v", date, err)
	}
	return e
}

// getEntry reads one row back for assertions.
func getEntry(s *LocalStore, id string) (*StudyEntry, error) {
	e, err := scanEntry(s.db.QueryRow(`SELECT `+entryColumns+` FROM study_entries WHERE id = ?`, id))
	if err != nil {
		return nil, classifySQLite(err)
	}
	return e, nil
}

func mustCreateTask(t *testing.T, s TaskStore, date, title string) *Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), "", date, title, "")
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewLocalWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "minutemind.db")
	s, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	mustCreate(t, s, "2024-03-04", 30, "")
	s.Close()

	// Reopen: data survives and migration is not re-run.
	s2, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	entries, err := s2.ListEntries(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].DurationMinutes != 30 {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}
}

// ============================================================
// Create / merge
// ============================================================

func TestCreateEntry(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, "2024-03-04", 90, "")

	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if e.Date != "2024-03-04" || e.DurationMinutes != 90 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Hours() != 1 || e.Minutes() != 30 {
		t.Fatalf("expected 1h 30m, got %dh %dm", e.Hours(), e.Minutes())
	}
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}
}

func TestCreateMergesSameDate(t *testing.T) {
	s := newTestStore(t)
	first := mustCreate(t, s, "2024-03-04", 30, "")
	second := mustCreate(t, s, "2024-03-04", 45, "")

	if second.ID != first.ID {
		t.Fatalf("merge should keep id %s, got %s", first.ID, second.ID)
	}
	if second.DurationMinutes != 75 {
		t.Fatalf("expected 75 minutes, got %d", second.DurationMinutes)
	}

	entries, _ := s.ListEntries(context.Background(), "")
	if len(entries) != 1 {
		t.Fatalf("expected 1 row, got %d", len(entries))
	}
}

func TestConcurrentCreatesMerge(t *testing.T) {
	s := newTestStore(t)
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateOrMergeEntry(context.Background(), "2024-03-04", 5, ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	entries, _ := s.ListEntries(context.Background(), "")
	if len(entries) != 1 {
		t.Fatalf("expected 1 row, got %d", len(entries))
	}
	if entries[0].DurationMinutes != workers*5 {
		t.Fatalf("expected %d minutes, got %d", workers*5, entries[0].DurationMinutes)
	}
}

func TestCreateSeparatesOwners(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "2024-03-04", 30, "alice")
	mustCreate(t, s, "2024-03-04", 40, "bob")

	alice, _ := s.ListEntries(context.Background(), "alice")
	bob, _ := s.ListEntries(context.Background(), "bob")
	anon, _ := s.ListEntries(context.Background(), "")

	if len(alice) != 1 || alice[0].DurationMinutes != 30 {
		t.Fatalf("alice: %+v", alice)
	}
	if len(bob) != 1 || bob[0].DurationMinutes != 40 {
		t.Fatalf("bob: %+v", bob)
	}
	if len(anon) != 0 {
		t.Fatalf("anonymous owner should see nothing, got %d", len(anon))
	}
}

func TestCreateRejectsInvalidDate(t *testing.T) {
	s := newTestStore(t)
	for _, date := range []string{"", "2024-02-30", "03/04/2024", "2024-3-4"} {
		_, err := s.CreateOrMergeEntry(context.Background(), date, 30, "")
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("date %q: expected ErrInvalidDate, got %v", date, err)
		}
	}
}

func TestCreateRejectsNegativeDuration(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateOrMergeEntry(context.Background(), "2024-03-04", -1, "")
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestCheckConstraintEnforcedByDatabase(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(
		`INSERT INTO study_entries (id, entry_date, duration_minutes) VALUES ('x', '2024-03-04', -5)`,
	)
	if err == nil {
		t.Fatal("expected CHECK constraint failure")
	}
	if !errors.Is(classifySQLite(err), ErrConstraint) {
		t.Fatalf("expected constraint classification, got %v", classifySQLite(err))
	}
}

// ============================================================
// List
// ============================================================

func TestListEntriesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "2024-03-02", 10, "")
	mustCreate(t, s, "2024-03-10", 20, "")
	mustCreate(t, s, "2024-02-28", 30, "")

	entries, err := s.ListEntries(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-10", "2024-03-02", "2024-02-28"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, d := range want {
		if entries[i].Date != d {
			t.Errorf("entry %d: expected %s, got %s", i, d, entries[i].Date)
		}
	}
}

func TestListEntriesEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.ListEntries(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestListEntriesCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ListEntries(ctx, ""); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// ============================================================
// Update / delete
// ============================================================

func TestUpdateEntry(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, "2024-03-04", 30, "")

	updated, err := s.UpdateEntry(context.Background(), e.ID, "2024-03-05", 120)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != e.ID || updated.Date != "2024-03-05" || updated.DurationMinutes != 120 {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(e.CreatedAt) {
		t.Fatal("created_at should not change on update")
	}

	got, err := getEntry(s, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Date != "2024-03-05" {
		t.Fatalf("expected stored date 2024-03-05, got %s", got.Date)
	}
}

func TestUpdateEntryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateEntry(context.Background(), "missing", "2024-03-04", 30)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEntryDateCollision(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "2024-03-04", 30, "")
	other := mustCreate(t, s, "2024-03-05", 30, "")

	_, err := s.UpdateEntry(context.Background(), other.ID, "2024-03-04", 30)
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestUpdateEntryInvalidDate(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, "2024-03-04", 30, "")
	_, err := s.UpdateEntry(context.Background(), e.ID, "2024-13-01", 30)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, "2024-03-04", 30, "")

	if err := s.DeleteEntry(context.Background(), e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := getEntry(s, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteEntry(context.Background(), e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettings(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetIntSetting(SettingDailyGoal, 0); got != 120 {
		t.Fatalf("expected daily goal 120, got %d", got)
	}
	if got := s.GetIntSetting(SettingDefaultMinutes, 0); got != 60 {
		t.Fatalf("expected default minutes 60, got %d", got)
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting(SettingDailyGoal, "90"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting(SettingDailyGoal)
	if err != nil {
		t.Fatal(err)
	}
	if v != "90" {
		t.Fatalf("expected 90, got %s", v)
	}
}

func TestGetIntSettingFallback(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetIntSetting("missing", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	s.SetSetting("garbage", "abc")
	if got := s.GetIntSetting("garbage", 9); got != 9 {
		t.Fatalf("expected fallback 9, got %d", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(settings))
	}
	if settings[0].Key != SettingDailyGoal || settings[1].Key != SettingDefaultMinutes {
		t.Fatalf("unexpected order %+v", settings)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateTodo(t *testing.T) {
	s := newTestStore(t)
	task, err := s.CreateTask(context.Background(), "alice", "", "  Read chapter 3  ", "")
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == "" || task.Title != "Read chapter 3" || task.Dated() || task.Completed {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.OwnerID != "alice" || task.CreatedAt.IsZero() {
		t.Fatalf("owner and timestamps should be set: %+v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, "", "", "   ", ""); !errors.Is(err, ErrConstraint) {
		t.Fatalf("blank title: expected ErrConstraint, got %v", err)
	}
	if _, err := s.CreateTask(ctx, "", "2024-02-30", "Revise", ""); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad date: expected ErrInvalidDate, got %v", err)
	}
}

func TestListTodosNewestFirst(t *testing.T) {
	s := newTestStore(t)
	mustCreateTask(t, s, "", "first")
	mustCreateTask(t, s, "", "second")
	mustCreateTask(t, s, "2024-03-04", "dated")

	todos, err := s.ListTasks(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 2 {
		t.Fatalf("expected 2 undated tasks, got %d", len(todos))
	}
	if todos[0].Title != "second" || todos[1].Title != "first" {
		t.Fatalf("expected newest first, got %q, %q", todos[0].Title, todos[1].Title)
	}
}

func TestListDaybookTasksInOrderAdded(t *testing.T) {
	s := newTestStore(t)
	mustCreateTask(t, s, "2024-03-04", "morning")
	mustCreateTask(t, s, "2024-03-04", "evening")
	mustCreateTask(t, s, "2024-03-05", "tomorrow")
	if _, err := s.CreateTask(context.Background(), "bob", "2024-03-04", "not mine", ""); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ListTasks(context.Background(), "", "2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].Title != "morning" || tasks[1].Title != "evening" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	if _, err := s.ListTasks(context.Background(), "", "03/04"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTaskDates(t *testing.T) {
	s := newTestStore(t)
	mustCreateTask(t, s, "2024-03-09", "b")
	mustCreateTask(t, s, "2024-03-01", "a")
	mustCreateTask(t, s, "2024-03-01", "a2")
	mustCreateTask(t, s, "2024-04-01", "next month")
	mustCreateTask(t, s, "", "undated")

	dates, err := s.TaskDates(context.Background(), "", "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2024-03-01" || dates[1] != "2024-03-09" {
		t.Fatalf("unexpected dates %v", dates)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task := mustCreateTask(t, s, "2024-03-04", "draft")

	updated, err := s.UpdateTask(context.Background(), task.ID, "final", " notes ")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "final" || updated.Description != "notes" || updated.Date != "2024-03-04" {
		t.Fatalf("unexpected update %+v", updated)
	}

	if _, err := s.UpdateTask(context.Background(), task.ID, "", ""); !errors.Is(err, ErrConstraint) {
		t.Fatalf("blank title: expected ErrConstraint, got %v", err)
	}
	if _, err := s.UpdateTask(context.Background(), "missing", "x", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleTask(t *testing.T) {
	s := newTestStore(t)
	task := mustCreateTask(t, s, "", "toggle me")

	done, err := s.ToggleTask(context.Background(), task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed {
		t.Fatal("first toggle should complete the task")
	}
	undone, err := s.ToggleTask(context.Background(), task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if undone.Completed {
		t.Fatal("second toggle should reopen the task")
	}
	if _, err := s.ToggleTask(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	task := mustCreateTask(t, s, "", "gone")

	if err := s.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatal(err)
	}
	todos, _ := s.ListTasks(context.Background(), "", "")
	if len(todos) != 0 {
		t.Fatal("task should be deleted")
	}
	if err := s.DeleteTask(context.Background(), task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestMigrateFromVersionOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	mustCreate(t, s, "2024-03-04", 30, "")
	if _, err := s.db.Exec(`DROP TABLE tasks; PRAGMA user_version = 1`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	mustCreateTask(t, s2, "", "after upgrade")
	entries, _ := s2.ListEntries(context.Background(), "")
	if len(entries) != 1 {
		t.Fatal("entries should survive the upgrade")
	}
}

// ============================================================
// Helpers and instrumentation
// ============================================================

func TestSortByDateDesc(t *testing.T) {
	entries := []StudyEntry{{Date: "2024-03-01"}, {Date: "2024-03-09"}, {Date: "2024-02-29"}}
	SortByDateDesc(entries)
	if entries[0].Date != "2024-03-09" || entries[2].Date != "2024-02-29" {
		t.Fatalf("unexpected order %+v", entries)
	}
}

func TestInstrumentCountsOperations(t *testing.T) {
	m := observability.NewMetrics()
	s := Instrument(newTestStore(t), m)
	ctx := context.Background()

	mustCreate(t, s, "2024-03-04", 30, "")
	mustCreate(t, s, "2024-03-04", 30, "")
	s.ListEntries(ctx, "")
	s.DeleteEntry(ctx, "missing")

	if got := testutil.ToFloat64(m.StoreOps().WithLabelValues("create", observability.OutcomeOK)); got != 2 {
		t.Errorf("create ok: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.StoreOps().WithLabelValues("list", observability.OutcomeOK)); got != 1 {
		t.Errorf("list ok: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.StoreOps().WithLabelValues("delete", observability.OutcomeError)); got != 1 {
		t.Errorf("delete error: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.EntriesMerged()); got != 1 {
		t.Errorf("merged: expected 1, got %v", got)
	}
}

func TestInstrumentTasksCountsOperations(t *testing.T) {
	m := observability.NewMetrics()
	s := InstrumentTasks(newTestStore(t), m)
	ctx := context.Background()

	task := mustCreateTask(t, s, "", "count me")
	s.ToggleTask(ctx, task.ID)
	s.ListTasks(ctx, "", "")
	s.DeleteTask(ctx, "missing")

	for _, tc := range []struct {
		op, outcome string
	}{
		{"task_create", observability.OutcomeOK},
		{"task_toggle", observability.OutcomeOK},
		{"task_list", observability.OutcomeOK},
		{"task_delete", observability.OutcomeError},
	} {
		if got := testutil.ToFloat64(m.StoreOps().WithLabelValues(tc.op, tc.outcome)); got != 1 {
			t.Errorf("%s %s: expected 1, got %v", tc.op, tc.outcome, got)
		}
	}
}

func TestInstrumentNilMetrics(t *testing.T) {
	inner := newTestStore(t)
	if got := Instrument(inner, nil); got != EntryStore(inner) {
		t.Fatal("nil metrics should return the inner store")
	}
}
