package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wricardo/notehunt/game/service"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	config_id        TEXT NOT NULL,
	data             BLOB NOT NULL,
	notes_collected  INTEGER NOT NULL DEFAULT 0,
	completed        INTEGER NOT NULL DEFAULT 0,
	updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLitePersistence implements SessionPersistence in a single SQLite file.
// Each row holds the same JSON document FilePersistence writes, plus a few
// columns for querying progress.
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (and creates if missing) the database at dsn
func NewSQLitePersistence(dsn string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sessionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLitePersistence{db: db, configManager: configManager}, nil
}

// openDB configures busy timeout and WAL journaling
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	jsonData, err := encodeSession(session)
	if err != nil {
		return err
	}
	state := session.Engine.GetState()

	_, err = sp.db.Exec(`
		INSERT INTO sessions (id, config_id, data, notes_collected, completed, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			config_id = excluded.config_id,
			data = excluded.data,
			notes_collected = excluded.notes_collected,
			completed = excluded.completed,
			updated_at = CURRENT_TIMESTAMP`,
		session.ID, session.ConfigID, jsonData, state.NotesCollected, state.Completed,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session row
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var data []byte
	err := sp.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return restoreSession(data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently updated first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}

// CompletedCount returns how many stored sessions have collected every note
func (sp *SQLitePersistence) CompletedCount() (int, error) {
	var n int
	if err := sp.db.QueryRow(`SELECT COUNT(1) FROM sessions WHERE completed = 1`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the database handle
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}
