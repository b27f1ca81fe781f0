package store

import (
	"path/filepath"
	"sync"

	"utter/internal/domain"
)

const targetFilename = "target.json"

// TargetFileStore persists the selected target across restarts.
type TargetFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTargetFileStore returns a TargetFileStore rooted at dir.
func NewTargetFileStore(dir string) *TargetFileStore {
	return &TargetFileStore{dir: dir}
}

// SaveTarget records t as the current target.
func (s *TargetFileStore) SaveTarget(t domain.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, targetFilename), t, 0o600)
}

// LoadTarget returns the saved target and whether one was present.
func (s *TargetFileStore) LoadTarget() (domain.Target, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t domain.Target
	if err := readJSON(filepath.Join(s.dir, targetFilename), &t); err != nil {
		return domain.Target{}, false, err
	}
	if t.IsZero() {
		return domain.Target{}, false, nil
	}
	return t, true, nil
}

var _ domain.TargetStore = (*TargetFileStore)(nil)
