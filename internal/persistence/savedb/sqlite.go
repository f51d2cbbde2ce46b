// Package savedb is the SQLite backend for the persistence bridge. It
// stores whole save records as opaque payloads keyed by slot; the record
// schema and its validation live in internal/persistence/save.
package savedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"geogrid.app/internal/persistence/save"
)

type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
		slot TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Save(slot string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO saves(slot, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at;`,
		slot, payload, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) Load(slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM saves WHERE slot = ?;`, slot).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("slot %s: %w", slot, save.ErrNoSave)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *SQLiteStore) Clear(slot string) error {
	_, err := s.db.Exec(`DELETE FROM saves WHERE slot = ?;`, slot)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
