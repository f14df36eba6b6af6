package store

import (
	"path/filepath"
	"sync"

	"packsync/internal/domain"
)

const trustedKeysFile = "trusted_keys.json"

// TrustedKeyFileStore persists trust decisions as a JSON map keyed by key
// id. Writes are atomic so a crash never loses previously persisted trust.
type TrustedKeyFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewTrustedKeyFileStore(dir string) *TrustedKeyFileStore {
	return &TrustedKeyFileStore{dir: dir}
}

func (s *TrustedKeyFileStore) path() string { return filepath.Join(s.dir, trustedKeysFile) }

func (s *TrustedKeyFileStore) Get(id domain.KeyID) (domain.TrustedKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.KeyID]domain.TrustedKey)
	if err := readJSON(s.path(), &m); err != nil {
		return domain.TrustedKey{}, false, err
	}
	k, ok := m[id]
	return k, ok, nil
}

func (s *TrustedKeyFileStore) Put(key domain.TrustedKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.KeyID]domain.TrustedKey)
	if err := readJSON(s.path(), &m); err != nil {
		return err
	}
	m[key.KeyID] = key
	return writeJSON(s.path(), m, 0o600)
}

func (s *TrustedKeyFileStore) Delete(id domain.KeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.KeyID]domain.TrustedKey)
	if err := readJSON(s.path(), &m); err != nil {
		return err
	}
	delete(m, id)
	return writeJSON(s.path(), m, 0o600)
}

func (s *TrustedKeyFileStore) List() ([]domain.TrustedKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.KeyID]domain.TrustedKey)
	if err := readJSON(s.path(), &m); err != nil {
		return nil, err
	}
	out := make([]domain.TrustedKey, 0, len(m))
	for _, k := range m {
		out = append(out, k)
	}
	return out, nil
}

var _ domain.TrustedKeyStore = (*TrustedKeyFileStore)(nil)
