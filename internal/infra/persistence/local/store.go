// Package local persists the full snapshot as a single JSON blob in an
// embedded SQLite database, serving as the durable fallback mirror when the
// remote backend is unavailable.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"fabtrack/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.LocalStore = (*Store)(nil)

// DefaultName is the fixed application key the blob is stored under.
const DefaultName = "fabtrack"

// Store writes the whole snapshot as one row; Save overwrites it after every
// state change and Load reads it once at startup.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	name string
	path string
}

// New opens (creating when needed) the sqlite file at path and ensures the
// state table exists. An empty path defaults to ./fabtrack.db.
func New(path string) (*Store, error) {
	if path == "" {
		path = "fabtrack.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, name: DefaultName, path: path}, nil
}

// Save serializes the snapshot and upserts it under the application name.
// The write is a single statement; readers never observe a partial blob.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	snapshot.Normalize()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`,
		s.name, payload); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot. A missing row reports found=false; an
// unparsable payload reports found=false with ErrCorruptSnapshot so callers
// can fall back to seed data.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE name = ?`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select snapshot: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	// Blobs written before shipments existed lack that key entirely.
	snapshot.Normalize()
	return snapshot, true, nil
}

// Clear removes the persisted blob entirely.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }
