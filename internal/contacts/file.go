package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"zvgcli/pkg/contracts/domain"
)

// FileStore persists the history as a JSON object in a single file. Writes
// go through a temp file in the same directory followed by a rename, so a
// crash mid-write never leaves a truncated history behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created on first Save; a missing file loads as an empty history.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (domain.ContactHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(domain.ContactHistory), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read contact history: %w", err)
	}
	history := make(domain.ContactHistory)
	if len(data) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode contact history: %w", err)
	}
	return history, nil
}

func (s *FileStore) Save(ctx context.Context, history domain.ContactHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contact history: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".contacts-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
