package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes the snapshot to a single JSON file on the local
// filesystem. Writes go through a temp file and rename, so a crash
// mid-save never leaves a truncated snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path. The parent
// directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("persist: create directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Save writes the snapshot as pretty-printed JSON.
func (s *FileStore) Save(_ context.Context, snap map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("persist: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("persist: commit snapshot: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot file.
func (s *FileStore) Load(_ context.Context) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: read snapshot: %w", err)
	}

	var snap map[string]json.RawMessage
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	return snap, nil
}
