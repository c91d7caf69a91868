// Package persist stores snapshots of registered property values so they
// survive process restarts. A snapshot is a name-to-JSON map produced by
// a registry; stores only move bytes and never interpret values.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/observe/pkg/registry"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("persist: snapshot not found")

// Store is the interface for snapshot storage backends.
// Implement this interface to use S3, GCS, or other storage.
type Store interface {
	// Save writes the snapshot, replacing any previous one.
	Save(ctx context.Context, snap map[string]json.RawMessage) error

	// Load returns the most recently saved snapshot.
	// Returns ErrNotFound if nothing has been saved.
	Load(ctx context.Context) (map[string]json.RawMessage, error)
}

// Save snapshots every property in reg and writes it to st.
func Save(ctx context.Context, st Store, reg *registry.Registry) error {
	snap, err := reg.Snapshot()
	if err != nil {
		return fmt.Errorf("persist: snapshot: %w", err)
	}
	if err := st.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	return nil
}

// Restore loads the latest snapshot from st and applies it to reg.
// A missing snapshot is not an error; the registry is left untouched.
func Restore(ctx context.Context, st Store, reg *registry.Registry) error {
	snap, err := st.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist: load: %w", err)
	}
	if err := reg.Restore(snap); err != nil {
		return fmt.Errorf("persist: restore: %w", err)
	}
	return nil
}
