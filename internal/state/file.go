package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const stateFileMode = 0o644

// FileStorage is a JSON-file-backed Storage adapter for single-host runs
// without Redis. The whole state map is rewritten on every save.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a file-backed Storage at path. The file is created
// lazily on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// GetState returns the stored value for key, or ErrKeyNotFound. A missing
// state file means no key has ever been written.
func (s *FileStorage) GetState(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateMap, err := s.load()
	if err != nil {
		return "", err
	}
	val, ok := stateMap[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// SaveState persists the value for key, rewriting the state file.
func (s *FileStorage) SaveState(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateMap, err := s.load()
	if err != nil {
		return err
	}
	stateMap[key] = value

	data, err := json.Marshal(stateMap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, stateFileMode); err != nil {
		return fmt.Errorf("write state file %q: %w", s.path, err)
	}
	return nil
}

func (s *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %q: %w", s.path, err)
	}

	stateMap := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &stateMap); err != nil {
			return nil, fmt.Errorf("parse state file %q: %w", s.path, err)
		}
	}
	return stateMap, nil
}
