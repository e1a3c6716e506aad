package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sadopc/minutemind/internal/dateutil"
)

// A NULL task_date is the to-do list; it reads back as an empty Date.
const remoteTaskColumns = `id::text, owner_id, COALESCE(task_date::text, ''), title, description, completed, created_at, updated_at`

func scanRemoteTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Date, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (s *RemoteStore) CreateTask(ctx context.Context, ownerID, date, title, description string) (*Task, error) {
	title, err := checkTask(date, title)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, owner_id, task_date, title, description)
		 VALUES ($1, $2, NULLIF($3, '')::date, $4, $5)
		 RETURNING `+remoteTaskColumns,
		uuid.NewString(), ownerID, date, title, strings.TrimSpace(description),
	)
	t, err := scanRemoteTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", classifyPostgres(err))
	}
	return t, nil
}

func (s *RemoteStore) ListTasks(ctx context.Context, ownerID, date string) ([]Task, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case date == "":
		rows, err = s.pool.Query(ctx,
			`SELECT `+remoteTaskColumns+` FROM tasks
			 WHERE owner_id = $1 AND task_date IS NULL
			 ORDER BY created_at DESC`,
			ownerID,
		)
	case !dateutil.IsValidDate(date):
		return nil, fmt.Errorf("list tasks: %w: %q", ErrInvalidDate, date)
	default:
		rows, err = s.pool.Query(ctx,
			`SELECT `+remoteTaskColumns+` FROM tasks
			 WHERE owner_id = $1 AND task_date = $2::date
			 ORDER BY created_at ASC`,
			ownerID, date,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", classifyPostgres(err))
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanRemoteTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", classifyPostgres(err))
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", classifyPostgres(err))
	}
	return tasks, nil
}

func (s *RemoteStore) TaskDates(ctx context.Context, ownerID, from, to string) ([]string, error) {
	if !dateutil.IsValidDate(from) || !dateutil.IsValidDate(to) {
		return nil, fmt.Errorf("task dates: %w: %q..%q", ErrInvalidDate, from, to)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT task_date::text FROM tasks
		 WHERE owner_id = $1 AND task_date BETWEEN $2::date AND $3::date
		 ORDER BY 1`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("task dates: %w", classifyPostgres(err))
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("task dates: %w", classifyPostgres(err))
	}
	return dates, nil
}

func (s *RemoteStore) UpdateTask(ctx context.Context, id, title, description string) (*Task, error) {
	title, err := checkTask("", title)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+remoteTaskColumns,
		id, title, strings.TrimSpace(description),
	)
	t, err := scanRemoteTask(row)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, classifyPostgres(err))
	}
	return t, nil
}

func (s *RemoteStore) ToggleTask(ctx context.Context, id string) (*Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks SET completed = NOT completed, updated_at = now()
		 WHERE id = $1
		 RETURNING `+remoteTaskColumns,
		id,
	)
	t, err := scanRemoteTask(row)
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, classifyPostgres(err))
	}
	return t, nil
}

func (s *RemoteStore) DeleteTask(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, classifyPostgres(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	return nil
}
