package profiles

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	name   TEXT PRIMARY KEY,
	config TEXT NOT NULL
);`

// SQLite is a profile store backed by a local SQLite database. Profile
// parameters are stored as a JSON blob per row.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the profile database at path and seeds the
// default profiles.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open profiles db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init profiles schema: %w", err)
	}

	s := &SQLite{db: db}
	for name, p := range Defaults() {
		if err := s.seed(name, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed profile %q: %w", name, err)
		}
	}
	return s, nil
}

// seed inserts a default profile without clobbering a row the user may
// have edited.
func (s *SQLite) seed(name string, p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO profiles (name, config) VALUES (?, ?)`,
		name, string(raw),
	)
	return err
}

func (s *SQLite) Get(name string) (Profile, error) {
	var raw string
	err := s.db.QueryRow(`SELECT config FROM profiles WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile %q: %w", name, err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %q: %w", name, err)
	}
	return p, nil
}

func (s *SQLite) All() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLite) Create(name string, p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", name, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO profiles (name, config) VALUES (?, ?)`,
		name, string(raw),
	)
	if err != nil {
		return fmt.Errorf("store profile %q: %w", name, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
