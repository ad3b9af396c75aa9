// Shared helpers for formstore CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/internal/engine"
	"github.com/openpatra/formstore/internal/repo"
)

// openStore resolves the data directory, boots the engine from its durable
// snapshot, and wires the repository layer. The caller must call the
// returned close function.
func openStore(ctx context.Context) (*repo.Store, func(), error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}

	snapshots, err := blob.NewFSStore(filepath.Join(dataDir, "snapshots"))
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	files, err := blob.NewFSStore(filepath.Join(dataDir, "files"))
	if err != nil {
		return nil, nil, fmt.Errorf("open file store: %w", err)
	}

	eng, err := engine.NewManager(filepath.Join(dataDir, "live"), snapshots).Engine(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("boot engine: %w", err)
	}

	// CLI invocations are one-shot; no read cache.
	store := repo.New(eng, files, nil)
	return store, func() { eng.Close() }, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// fatal prints a system error and exits.
func fatal(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix+":", err)
	os.Exit(exitSysError)
}
