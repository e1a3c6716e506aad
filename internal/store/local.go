package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/minutemind/internal/dateutil"
	_ "modernc.org/sqlite"
)

const currentVersion = 2

// LocalStore keeps entries, tasks and settings in a SQLite file.
type LocalStore struct {
	db *sql.DB
}

var _ Backend = (*LocalStore)(nil)

// NewLocal opens (or creates) the SQLite database at dbPath and runs migrations.
func NewLocal(dbPath string) (*LocalStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers, and keeps :memory: a single database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &LocalStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*LocalStore, error) {
	return NewLocal(":memory:")
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *LocalStore) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS study_entries (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL DEFAULT '',
		entry_date       TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0 CHECK (duration_minutes >= 0),
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(owner_id, entry_date)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date ON study_entries(entry_date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('daily_goal',      '120'),
		('default_minutes', '60');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 adds tasks. An empty task_date puts the task on the to-do list
// instead of a day in the daybook.
func (s *LocalStore) migrateV2() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL DEFAULT '',
		task_date   TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL CHECK (title <> ''),
		description TEXT NOT NULL DEFAULT '',
		completed   INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_owner_date ON tasks(owner_id, task_date);
	`
	_, err := s.db.Exec(ddl)
	return err
}

const entryColumns = `id, owner_id, entry_date, duration_minutes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*StudyEntry, error) {
	e := &StudyEntry{}
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Date, &e.DurationMinutes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func (s *LocalStore) CreateOrMergeEntry(ctx context.Context, date string, durationMinutes int, ownerID string) (*StudyEntry, error) {
	if err := checkEntry(date, durationMinutes); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO study_entries (id, owner_id, entry_date, duration_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, entry_date) DO UPDATE SET
			duration_minutes = study_entries.duration_minutes + excluded.duration_minutes,
			updated_at = excluded.updated_at
		 RETURNING `+entryColumns,
		uuid.NewString(), ownerID, date, durationMinutes, now, now,
	)
	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", classifySQLite(err))
	}
	return e, nil
}

func (s *LocalStore) ListEntries(ctx context.Context, ownerID string) ([]StudyEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM study_entries WHERE owner_id = ? ORDER BY entry_date DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", classifySQLite(err))
	}
	defer rows.Close()

	var entries []StudyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", classifySQLite(err))
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", classifySQLite(err))
	}
	return entries, nil
}

// UpdateEntry replaces the date and duration of an entry. Moving an entry
// onto a date the owner already has is a constraint violation.
func (s *LocalStore) UpdateEntry(ctx context.Context, id, date string, durationMinutes int) (*StudyEntry, error) {
	if err := checkEntry(date, durationMinutes); err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`UPDATE study_entries SET entry_date = ?, duration_minutes = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+entryColumns,
		date, durationMinutes, now, id,
	)
	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, classifySQLite(err))
	}
	return e, nil
}

func (s *LocalStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM study_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, classifySQLite(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, classifySQLite(err))
	}
	if n == 0 {
		return fmt.Errorf("delete entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func checkEntry(date string, durationMinutes int) error {
	if !dateutil.IsValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if durationMinutes < 0 {
		return fmt.Errorf("%w: negative duration %d", ErrConstraint, durationMinutes)
	}
	return nil
}

// classifySQLite maps driver errors onto the store sentinels.
func classifySQLite(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case strings.Contains(err.Error(), "constraint failed"):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
