package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RemoteStore keeps entries and tasks in a hosted Postgres database.
type RemoteStore struct {
	pool *pgxpool.Pool
}

var _ Backend = (*RemoteStore)(nil)

const remoteSchema = `
CREATE TABLE IF NOT EXISTS study_entries (
	id               UUID PRIMARY KEY,
	owner_id         TEXT NOT NULL DEFAULT '',
	entry_date       DATE NOT NULL,
	duration_minutes INTEGER NOT NULL DEFAULT 0 CHECK (duration_minutes >= 0),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, entry_date)
);
CREATE INDEX IF NOT EXISTS idx_study_entries_owner_date ON study_entries (owner_id, entry_date DESC);

CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	owner_id    TEXT NOT NULL DEFAULT '',
	task_date   DATE,
	title       TEXT NOT NULL CHECK (title <> ''),
	description TEXT NOT NULL DEFAULT '',
	completed   BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_date ON tasks (owner_id, task_date);
`

// NewRemote connects to Postgres at connString.
func NewRemote(ctx context.Context, connString string) (*RemoteStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w: %v", ErrUnavailable, err)
	}
	return &RemoteStore{pool: pool}, nil
}

// NewRemoteWithPool wraps an existing pool.
func NewRemoteWithPool(pool *pgxpool.Pool) *RemoteStore {
	return &RemoteStore{pool: pool}
}

// Migrate creates the entries and tasks tables when they do not exist yet.
func (s *RemoteStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, remoteSchema); err != nil {
		return fmt.Errorf("migrate: %w", classifyPostgres(err))
	}
	return nil
}

func (s *RemoteStore) Close() error {
	s.pool.Close()
	return nil
}

// Dates travel as text so the DATE column never picks up a time zone.
const remoteColumns = `id::text, owner_id, entry_date::text, duration_minutes, created_at, updated_at`

func scanRemote(row pgx.Row) (*StudyEntry, error) {
	e := &StudyEntry{}
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Date, &e.DurationMinutes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func (s *RemoteStore) CreateOrMergeEntry(ctx context.Context, date string, durationMinutes int, ownerID string) (*StudyEntry, error) {
	if err := checkEntry(date, durationMinutes); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO study_entries (id, owner_id, entry_date, duration_minutes)
		 VALUES ($1, $2, $3::date, $4)
		 ON CONFLICT (owner_id, entry_date) DO UPDATE SET
			duration_minutes = study_entries.duration_minutes + EXCLUDED.duration_minutes,
			updated_at = now()
		 RETURNING `+remoteColumns,
		uuid.NewString(), ownerID, date, durationMinutes,
	)
	e, err := scanRemote(row)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", classifyPostgres(err))
	}
	return e, nil
}

func (s *RemoteStore) ListEntries(ctx context.Context, ownerID string) ([]StudyEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+remoteColumns+` FROM study_entries WHERE owner_id = $1 ORDER BY entry_date DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", classifyPostgres(err))
	}
	defer rows.Close()

	var entries []StudyEntry
	for rows.Next() {
		e, err := scanRemote(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", classifyPostgres(err))
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", classifyPostgres(err))
	}
	return entries, nil
}

func (s *RemoteStore) UpdateEntry(ctx context.Context, id, date string, durationMinutes int) (*StudyEntry, error) {
	if err := checkEntry(date, durationMinutes); err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, ErrNotFound)
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE study_entries SET entry_date = $2::date, duration_minutes = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+remoteColumns,
		id, date, durationMinutes,
	)
	e, err := scanRemote(row)
	if err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, classifyPostgres(err))
	}
	return e, nil
}

func (s *RemoteStore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, ErrNotFound)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM study_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, classifyPostgres(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// classifyPostgres maps pgx errors onto the store sentinels. Anything that
// is not a server-side error is treated as the store being unreachable.
func classifyPostgres(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514": // unique_violation, check_violation
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		case "22007", "22008": // invalid_datetime_format, datetime_field_overflow
			return fmt.Errorf("%w: %s", ErrInvalidDate, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
