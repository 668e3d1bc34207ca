package store

import (
	"path/filepath"
	"testing"

	"parley/internal/types"
)

func TestFileUIStateStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewFileUIStateStore(path)

	// Missing file reads as empty state, not an error.
	state, err := s.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if state.SelectedPeer != "" {
		t.Fatalf("expected empty state, got %+v", state)
	}

	if err := s.Save(&types.UIState{SelectedPeer: "bob@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	state, err = s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.SelectedPeer != "bob@example.com" {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestFileUIStateStoreRejectsNil(t *testing.T) {
	s := NewFileUIStateStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Save(nil); err == nil {
		t.Fatalf("expected error for nil state")
	}
}
