package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/minutemind/internal/dateutil"
)

const taskColumns = `id, owner_id, task_date, title, description, completed, created_at, updated_at`

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var createdAt, updatedAt string
	var completed int
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Date, &t.Title, &t.Description, &completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Completed = completed == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *LocalStore) CreateTask(ctx context.Context, ownerID, date, title, description string) (*Task, error) {
	title, err := checkTask(date, title)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, owner_id, task_date, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+taskColumns,
		uuid.NewString(), ownerID, date, title, strings.TrimSpace(description), now, now,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", classifySQLite(err))
	}
	return t, nil
}

func (s *LocalStore) ListTasks(ctx context.Context, ownerID, date string) ([]Task, error) {
	if date != "" && !dateutil.IsValidDate(date) {
		return nil, fmt.Errorf("list tasks: %w: %q", ErrInvalidDate, date)
	}
	// rowid breaks ties between tasks created within the same second.
	order := `created_at ASC, rowid ASC`
	if date == "" {
		order = `created_at DESC, rowid DESC`
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND task_date = ? ORDER BY `+order,
		ownerID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", classifySQLite(err))
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", classifySQLite(err))
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", classifySQLite(err))
	}
	return tasks, nil
}

func (s *LocalStore) TaskDates(ctx context.Context, ownerID, from, to string) ([]string, error) {
	if !dateutil.IsValidDate(from) || !dateutil.IsValidDate(to) {
		return nil, fmt.Errorf("task dates: %w: %q..%q", ErrInvalidDate, from, to)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT task_date FROM tasks
		 WHERE owner_id = ? AND task_date >= ? AND task_date <= ?
		 ORDER BY task_date`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("task dates: %w", classifySQLite(err))
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("task dates: %w", classifySQLite(err))
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UpdateTask replaces the title and description. The date and completion
// state are left alone.
func (s *LocalStore) UpdateTask(ctx context.Context, id, title, description string) (*Task, error) {
	title, err := checkTask("", title)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+taskColumns,
		title, strings.TrimSpace(description), now, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, classifySQLite(err))
	}
	return t, nil
}

// ToggleTask flips the completed flag in a single statement.
func (s *LocalStore) ToggleTask(ctx context.Context, id string) (*Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET completed = 1 - completed, updated_at = ?
		 WHERE id = ?
		 RETURNING `+taskColumns,
		now, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, classifySQLite(err))
	}
	return t, nil
}

func (s *LocalStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, classifySQLite(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, classifySQLite(err))
	}
	if n == 0 {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	return nil
}

// checkTask validates a task and returns the trimmed title.
func checkTask(date, title string) (string, error) {
	if date != "" && !dateutil.IsValidDate(date) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: task title is required", ErrConstraint)
	}
	return title, nil
}
