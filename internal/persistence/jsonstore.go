package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore persists a single collection as a pretty-printed JSON array in
// one file. Every mutation rewrites the file wholesale; callers are expected
// to Load, modify in memory, then Persist.
type JSONStore struct {
	path string
}

// NewJSONStore builds a store for the named file under dir.
func NewJSONStore(dir, name string) *JSONStore {
	return &JSONStore{path: filepath.Join(dir, name)}
}

// Path returns the backing file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load unmarshals the whole file into v. A missing file leaves v untouched,
// so callers start from an empty collection.
func (s *JSONStore) Load(v any) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	return nil
}

// Persist rewrites the whole file from v, pretty-printed, creating the data
// directory on first use.
func (s *JSONStore) Persist(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
