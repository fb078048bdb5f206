// Package store persists tasks for the reference backend in a single SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"taskdesk/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no task has the given id.
var ErrNotFound = errors.New("task not found")

type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies migrations.
// ":memory:" is accepted for throwaway stores.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			row_id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			startdate TEXT,
			enddate TEXT,
			status INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const taskColumns = `row_id, title, detail, startdate, enddate, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (model.Task, error) {
	var (
		id         int64
		t          model.Task
		start, end sql.NullString
		status     int
	)
	if err := sc.Scan(&id, &t.Title, &t.Detail, &start, &end, &status); err != nil {
		return model.Task{}, err
	}
	t.ID = strconv.FormatInt(id, 10)
	t.Status = model.StatusFromBool(status != 0)
	if start.Valid && end.Valid && start.String != "" && end.String != "" {
		s, err := time.Parse(time.RFC3339Nano, start.String)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %d: startdate: %w", id, err)
		}
		e, err := time.Parse(time.RFC3339Nano, end.String)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %d: enddate: %w", id, err)
		}
		t.Due = &model.DateRange{Start: s, End: e}
	}
	return t, nil
}

func dueColumns(due *model.DateRange) (any, any) {
	if due == nil {
		return nil, nil
	}
	return due.Start.UTC().Format(time.RFC3339Nano), due.End.UTC().Format(time.RFC3339Nano)
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// List returns every task ordered by row_id.
func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY row_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	n, ok := parseID(id)
	if !ok {
		return model.Task{}, ErrNotFound
	}
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE row_id = ?`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

// Create validates f and inserts a new incomplete task.
func (s *Store) Create(ctx context.Context, f model.Fields) (model.Task, error) {
	if err := model.ValidateFields(f); err != nil {
		return model.Task{}, err
	}
	now := time.Now().UTC().UnixMilli()
	start, end := dueColumns(f.Due)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(title, detail, startdate, enddate, status, created_at, updated_at) VALUES(?, ?, ?, ?, 0, ?, ?)`,
		strings.TrimSpace(f.Title), f.Detail, start, end, now, now)
	if err != nil {
		return model.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	return s.Get(ctx, strconv.FormatInt(id, 10))
}

// Update replaces the editable fields of task id.
func (s *Store) Update(ctx context.Context, id string, f model.Fields) (model.Task, error) {
	n, ok := parseID(id)
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := model.ValidateFields(f); err != nil {
		return model.Task{}, err
	}
	start, end := dueColumns(f.Due)
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, detail = ?, startdate = ?, enddate = ?, updated_at = ? WHERE row_id = ?`,
		strings.TrimSpace(f.Title), f.Detail, start, end, time.Now().UTC().UnixMilli(), n)
	if err != nil {
		return model.Task{}, err
	}
	if err := requireAffected(res); err != nil {
		return model.Task{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	n, ok := parseID(id)
	if !ok {
		return model.Task{}, ErrNotFound
	}
	v := 0
	if status.Complete() {
		v = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE row_id = ?`,
		v, time.Now().UTC().UnixMilli(), n)
	if err != nil {
		return model.Task{}, err
	}
	if err := requireAffected(res); err != nil {
		return model.Task{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes task id and returns its canonical id ("001" deletes row 1 and returns "1").
func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	n, ok := parseID(id)
	if !ok {
		return "", ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE row_id = ?`, n)
	if err != nil {
		return "", err
	}
	if err := requireAffected(res); err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
