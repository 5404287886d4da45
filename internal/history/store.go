package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the history as a single JSON file, the device-local
// analog of a browser storage key.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the history file. A missing file is an empty history, not an
// error; a corrupt file is an error (callers fail soft).
func (fs *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding history file: %w", err)
	}
	return entries, nil
}

// Save writes the whole sequence atomically (write to temp file, rename).
func (fs *FileStore) Save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	Entries []Entry
	LoadErr error
	SaveErr error
}

// Load returns the in-memory entries or the configured error.
func (ms *MemStore) Load() ([]Entry, error) {
	if ms.LoadErr != nil {
		return nil, ms.LoadErr
	}
	out := make([]Entry, len(ms.Entries))
	copy(out, ms.Entries)
	return out, nil
}

// Save replaces the in-memory entries or returns the configured error.
func (ms *MemStore) Save(entries []Entry) error {
	if ms.SaveErr != nil {
		return ms.SaveErr
	}
	ms.Entries = make([]Entry, len(entries))
	copy(ms.Entries, entries)
	return nil
}
