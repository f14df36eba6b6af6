package store

import (
	"path/filepath"
	"sync"

	"packsync/internal/domain"
)

const replayFile = "replay_seen.json"

// ReplayFileStore persists the replay guard's seen-message records so a
// process restart does not re-open the replay window.
type ReplayFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewReplayFileStore(dir string) *ReplayFileStore { return &ReplayFileStore{dir: dir} }

func (s *ReplayFileStore) path() string { return filepath.Join(s.dir, replayFile) }

func (s *ReplayFileStore) Load() ([]domain.ReplayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []domain.ReplayRecord
	if err := readJSON(s.path(), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ReplayFileStore) Save(records []domain.ReplayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.path(), records, 0o600)
}

var _ domain.ReplayStore = (*ReplayFileStore)(nil)
