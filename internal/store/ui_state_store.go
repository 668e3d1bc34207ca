package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"parley/internal/types"
)

// FileUIStateStore persists UI state as JSON next to the config files.
type FileUIStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileUIStateStore(path string) *FileUIStateStore {
	return &FileUIStateStore{path: path}
}

func (s *FileUIStateStore) Load() (*types.UIState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.UIState{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *FileUIStateStore) Save(state *types.UIState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
