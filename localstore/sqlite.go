package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	_ "modernc.org/sqlite"
)

var _ Profiles = (*SQLiteProfiles)(nil)

// SQLiteProfiles persists every profile's keys in one SQLite table
type SQLiteProfiles struct {
	db *sql.DB
}

// OpenSQLiteProfiles opens (or creates) the database at dbPath
func OpenSQLiteProfiles(dbPath string) (*SQLiteProfiles, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("[OpenSQLiteProfiles] create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("[OpenSQLiteProfiles] open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("[OpenSQLiteProfiles] ping database: %w", err)
	}

	p := &SQLiteProfiles{db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("[OpenSQLiteProfiles] initialize schema: %w", err)
	}
	return p, nil
}

func (p *SQLiteProfiles) initSchema() error {
	_, err := p.db.Exec(`
	CREATE TABLE IF NOT EXISTS local_store (
		profile_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (profile_id, key)
	);`)
	return err
}

// Close closes the underlying database
func (p *SQLiteProfiles) Close() error {
	return p.db.Close()
}

// Open returns a store scoped to profileID. Nothing is written until the first Set.
func (p *SQLiteProfiles) Open(profileID string) (Store, error) {
	if profileID == "" {
		return nil, errors.Wrapf(errors.ErrProfileNotFound, "[SQLiteProfiles Open] profileID is required")
	}
	return &sqliteStore{db: p.db, profileID: profileID}, nil
}

// Delete removes every key held by profileID
func (p *SQLiteProfiles) Delete(profileID string) error {
	if profileID == "" {
		return errors.Wrapf(errors.ErrProfileNotFound, "[SQLiteProfiles Delete] profileID is required")
	}
	if _, err := p.db.Exec(`DELETE FROM local_store WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("[SQLiteProfiles Delete] %w", err)
	}
	return nil
}

type sqliteStore struct {
	db        *sql.DB
	profileID string
}

func (s *sqliteStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_store WHERE profile_id = ? AND key = ?`, s.profileID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[sqliteStore Get] %q: %w", key, err)
	}
	return value, nil
}

func (s *sqliteStore) Set(key, value string) error {
	_, err := s.db.Exec(`
	INSERT INTO local_store (profile_id, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(profile_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.profileID, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("[sqliteStore Set] %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_store WHERE profile_id = ? AND key = ?`, s.profileID, key); err != nil {
		return fmt.Errorf("[sqliteStore Remove] %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM local_store WHERE profile_id = ?`, s.profileID); err != nil {
		return fmt.Errorf("[sqliteStore Clear] %w", err)
	}
	return nil
}

func (s *sqliteStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM local_store WHERE profile_id = ? ORDER BY key`, s.profileID)
	if err != nil {
		return nil, fmt.Errorf("[sqliteStore Keys] %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("[sqliteStore Keys] scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
