package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

type Outcome string

const (
	Completed Outcome = "completed"
	Skipped   Outcome = "skipped"
	Reset     Outcome = "reset"
)

// Entry is one finished session.
type Entry struct {
	ID      string        `json:"id"`
	Mode    pomodoro.Mode `json:"mode"`
	Planned int           `json:"planned"`
	Elapsed int           `json:"elapsed"`
	Outcome Outcome       `json:"outcome"`
	EndedAt time.Time     `json:"ended_at"`
}

// Store records finished sessions in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the journal. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		planned_seconds INTEGER NOT NULL,
		elapsed_seconds INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		ended_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores an entry, assigning an ID and end time when missing.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EndedAt.IsZero() {
		e.EndedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, mode, planned_seconds, elapsed_seconds, outcome, ended_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, string(e.Mode), e.Planned, e.Elapsed, string(e.Outcome), e.EndedAt.UnixMilli(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert session: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, mode, planned_seconds, elapsed_seconds, outcome, ended_at FROM sessions ORDER BY ended_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var mode, outcome string
		var endedAt int64
		if err := rows.Scan(&e.ID, &mode, &e.Planned, &e.Elapsed, &outcome, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		e.Mode = pomodoro.Mode(mode)
		e.Outcome = Outcome(outcome)
		e.EndedAt = time.UnixMilli(endedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// CountSince counts entries of one mode and outcome ended at or after since.
func (s *Store) CountSince(ctx context.Context, mode pomodoro.Mode, outcome Outcome, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE mode = ? AND outcome = ? AND ended_at >= ?",
		string(mode), string(outcome), since.UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
