// Package sessionstore persists completed session event logs and
// integrity-score snapshots in a small SQLite database, so a replay or
// scoring run can outlive the process that recorded the session.
package sessionstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/assessments/shellcore/internal/recorder"
)

// Store wraps a SQLite connection holding recorded sessions.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at dsn and runs
// the schema bootstrap.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessionstore: set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessionstore: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		events_json TEXT NOT NULL,
		integrity_score INTEGER,
		integrity_summary TEXT
	)`)
	return err
}

// Session is a completed, persisted assessment session.
type Session struct {
	ID               string
	User             string
	StartedAt        time.Time
	FinishedAt       *time.Time
	Events           []recorder.Event
	IntegrityScore   *int
	IntegritySummary *string
}

// SaveSession inserts or replaces the row for sess.ID.
func (s *Store) SaveSession(sess *Session) error {
	data, err := json.Marshal(sess.Events)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal events: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO sessions (id, user, started_at, finished_at, events_json, integrity_score, integrity_summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user = excluded.user,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			events_json = excluded.events_json,
			integrity_score = excluded.integrity_score,
			integrity_summary = excluded.integrity_summary`,
		sess.ID, sess.User, sess.StartedAt, sess.FinishedAt, string(data), sess.IntegrityScore, sess.IntegritySummary)
	if err != nil {
		return fmt.Errorf("sessionstore: save session %s: %w", sess.ID, err)
	}
	return nil
}

// LoadSession returns the session with the given id, or nil if absent.
func (s *Store) LoadSession(id string) (*Session, error) {
	var sess Session
	var eventsJSON string
	err := s.db.QueryRow(`SELECT id, user, started_at, finished_at, events_json, integrity_score, integrity_summary
		FROM sessions WHERE id = ?`, id).Scan(
		&sess.ID, &sess.User, &sess.StartedAt, &sess.FinishedAt, &eventsJSON, &sess.IntegrityScore, &sess.IntegritySummary)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(eventsJSON), &sess.Events); err != nil {
		return nil, fmt.Errorf("sessionstore: unmarshal events for %s: %w", id, err)
	}
	return &sess, nil
}

// LoadLastSession returns the most recently started session, or nil if
// the store is empty.
func (s *Store) LoadLastSession() (*Session, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM sessions ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load last session: %w", err)
	}
	return s.LoadSession(id)
}

// ListSessionIDs returns every session ID, most recently started first.
func (s *Store) ListSessionIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: list sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sessionstore: scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSession removes the row for id.
func (s *Store) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}
