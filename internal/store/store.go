// Package store maintains the SQLite index of dictation sessions.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL,
	ended_at INTEGER,
	status TEXT NOT NULL DEFAULT 'active',
	document_path TEXT NOT NULL,
	utterance_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// Session is one row of the session index.
type Session struct {
	ID             string
	Title          string
	StartedAt      time.Time
	EndedAt        *time.Time
	Status         string
	DocumentPath   string
	UtteranceCount int
}

// Store records session lifecycle rows alongside the markdown documents.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the index database path under the state directory.
func DefaultDBPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "benedict", "sessions.sqlite"), nil
}

// Open opens the database at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession inserts a new active session row and returns its id.
func (s *Store) StartSession(documentPath string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at, status, document_path)
		VALUES (?, ?, 'active', ?)
	`, id, startedAt.Unix(), documentPath)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// SetTitle records the generated title for a session.
func (s *Store) SetTitle(id, title string) error {
	if _, err := s.db.Exec(`UPDATE sessions SET title = ? WHERE id = ?`, title, id); err != nil {
		return fmt.Errorf("update session title: %w", err)
	}
	return nil
}

// SetDocumentPath records the renamed document location for a session.
func (s *Store) SetDocumentPath(id, path string) error {
	if _, err := s.db.Exec(`UPDATE sessions SET document_path = ? WHERE id = ?`, path, id); err != nil {
		return fmt.Errorf("update session document path: %w", err)
	}
	return nil
}

// EndSession marks a session closed with its final utterance count.
func (s *Store) EndSession(id string, endedAt time.Time, utteranceCount int) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ?, status = 'closed', utterance_count = ?
		WHERE id = ?
	`, endedAt.Unix(), utteranceCount, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// ListSessions returns up to limit sessions, most recent first.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, title, started_at, ended_at, status, document_path, utterance_count
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt int64
		var endedAt sql.NullInt64
		if err := rows.Scan(&sess.ID, &sess.Title, &startedAt, &endedAt,
			&sess.Status, &sess.DocumentPath, &sess.UtteranceCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = time.Unix(startedAt, 0)
		if endedAt.Valid {
			t := time.Unix(endedAt.Int64, 0)
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
