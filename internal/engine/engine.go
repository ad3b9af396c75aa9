// Package engine wraps the embedded SQLite database behind a single handle
// with durable snapshotting. The live database is a file inside the data
// directory; Save exports its full byte image into the durable block store
// under one well-known key, and a later bootstrap reloads it from there.
package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/pkg/types"
)

// liveDBName is the filename of the working database inside the data dir.
const liveDBName = "portal.db"

// Engine is the handle to the live embedded database. The RWMutex exists for
// Replace: ordinary statements take the read lock, while swapping the whole
// database image (restore path) takes the write lock.
type Engine struct {
	mu        sync.RWMutex
	db        *sql.DB
	path      string
	snapshots blob.Store
}

// openDB opens the SQLite file at path with the engine's pragmas. The
// default rollback journal is kept (not WAL) so the database stays a single
// file; snapshots go through VACUUM INTO regardless.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying pragma: %w", err)
	}
	return db, nil
}

// Exec executes a statement against the live database.
func (e *Engine) Exec(query string, args ...any) (sql.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, types.ErrEngineClosed
	}
	return e.db.Exec(query, args...)
}

// Query runs a query against the live database.
func (e *Engine) Query(query string, args ...any) (*sql.Rows, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, types.ErrEngineClosed
	}
	return e.db.Query(query, args...)
}

// QueryRow runs a single-row query against the live database.
func (e *Engine) QueryRow(query string, args ...any) (*sql.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, types.ErrEngineClosed
	}
	return e.db.QueryRow(query, args...), nil
}

// Begin starts a transaction on the live database.
func (e *Engine) Begin() (*sql.Tx, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, types.ErrEngineClosed
	}
	return e.db.Begin()
}

// Snapshot exports the entire database as a single byte image. VACUUM INTO
// produces a consistent standalone copy whatever journal mode is active.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, types.ErrEngineClosed
	}

	dir := filepath.Dir(e.path)
	scratch := filepath.Join(dir, fmt.Sprintf(".snapshot-%d.db", time.Now().UnixNano()))
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(scratch)
	defer os.Remove(scratch)

	if _, err := e.db.Exec("VACUUM INTO ?", scratch); err != nil {
		return nil, fmt.Errorf("exporting snapshot: %w", err)
	}
	image, err := os.ReadFile(scratch)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return image, nil
}

// Save snapshots the database and writes the image into the durable store
// under the well-known key. Every mutating repository call ends with Save,
// so the durable store trails the live database by at most one operation.
func (e *Engine) Save() error {
	image, err := e.Snapshot()
	if err != nil {
		return err
	}
	if err := e.snapshots.Put(blob.SnapshotKey, image); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// Replace swaps the live database for the given byte image. Used by restore;
// the image fully replaces the current database, it is never merged.
func (e *Engine) Replace(image []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return types.ErrEngineClosed
	}

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("closing database for replace: %w", err)
	}
	e.db = nil

	if err := os.WriteFile(e.path, image, 0o644); err != nil {
		return fmt.Errorf("writing replacement image: %w", err)
	}

	db, err := openDB(e.path)
	if err != nil {
		return fmt.Errorf("reopening replaced database: %w", err)
	}
	e.db = db
	return nil
}

// Close releases the database handle. Only used by tests and CLI teardown;
// the portal itself keeps the engine for the process lifetime.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}
