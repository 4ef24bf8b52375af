// Package session manages device-local session state: the persisted bearer
// credential, an optional user snapshot, and the in-process refresh signal.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Keys in the kv table.
const (
	keyToken = "token"
	keyUser  = "user"
)

// ErrNotFound is returned when a key has no persisted value.
var ErrNotFound = errors.New("session: not found")

// Store is a persistent key-value store for session state, backed by a
// local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session store at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize session schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the persisted bearer credential. The second return value
// reports whether a credential is present. It implements api.TokenSource.
func (s *Store) Token() (string, bool, error) {
	v, err := s.get(keyToken)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetToken persists the bearer credential, overwriting any previous value.
func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// User is the locally persisted profile snapshot saved alongside the token
// by the register flow.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// SetUser persists the user snapshot.
func (s *Store) SetUser(u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	return s.set(keyUser, string(data))
}

// User returns the persisted user snapshot, or ErrNotFound.
func (s *Store) User() (User, error) {
	v, err := s.get(keyUser)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return User{}, fmt.Errorf("decode user snapshot: %w", err)
	}
	return u, nil
}

// Clear removes all persisted session state.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read session key %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write session key %s: %w", key, err)
	}
	return nil
}
