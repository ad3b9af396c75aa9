package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openpatra/formstore/internal/blob"
)

// Manager owns the lazy, exactly-once bootstrap of the engine. The first
// caller of Engine performs the boot (load prior snapshot or create fresh,
// apply schema); concurrent callers block on the same in-flight boot and all
// receive the same handle. A boot failure is sticky: every subsequent call
// reports the same initialization error.
type Manager struct {
	dataDir   string
	snapshots blob.Store

	mu        sync.Mutex
	boot      chan struct{}
	eng       *Engine
	err       error
	bootCount int
}

// NewManager creates a Manager. Nothing is opened until the first Engine call.
func NewManager(dataDir string, snapshots blob.Store) *Manager {
	return &Manager{dataDir: dataDir, snapshots: snapshots}
}

// Engine returns the initialized engine handle, booting it on first use.
func (m *Manager) Engine(ctx context.Context) (*Engine, error) {
	m.mu.Lock()
	if m.eng != nil || m.err != nil {
		eng, err := m.eng, m.err
		m.mu.Unlock()
		return eng, err
	}

	if m.boot != nil {
		// Another caller is booting; wait for it.
		ch := m.boot
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.eng, m.err
	}

	ch := make(chan struct{})
	m.boot = ch
	m.mu.Unlock()

	eng, err := m.bootstrap()

	m.mu.Lock()
	m.eng, m.err = eng, err
	m.bootCount++
	close(ch)
	m.mu.Unlock()
	return eng, err
}

// bootstrap loads the prior snapshot from the durable store if one exists,
// otherwise starts a fresh database, then applies the idempotent schema.
func (m *Manager) bootstrap() (*Engine, error) {
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(m.dataDir, liveDBName)

	image, err := m.snapshots.Get(blob.SnapshotKey)
	switch {
	case err == nil:
		if werr := os.WriteFile(path, image, 0o644); werr != nil {
			return nil, fmt.Errorf("restoring snapshot image: %w", werr)
		}
	case err == blob.ErrNotExist:
		// No prior snapshot. Drop any stale working file so the durable
		// store stays the single source of truth.
		os.Remove(path)
	default:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	return &Engine{db: db, path: path, snapshots: m.snapshots}, nil
}
