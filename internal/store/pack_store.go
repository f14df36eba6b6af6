package store

import (
	"path/filepath"
	"sort"
	"sync"

	"packsync/internal/domain"
)

const packsFile = "packs.json"

// PackFileStore persists content-pack metadata as a JSON map keyed by pack
// id.
type PackFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewPackFileStore(dir string) *PackFileStore { return &PackFileStore{dir: dir} }

func (s *PackFileStore) path() string { return filepath.Join(s.dir, packsFile) }

func (s *PackFileStore) Get(id domain.PackID) (domain.ContentPack, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.PackID]domain.ContentPack)
	if err := readJSON(s.path(), &m); err != nil {
		return domain.ContentPack{}, false, err
	}
	p, ok := m[id]
	return p, ok, nil
}

func (s *PackFileStore) Put(pack domain.ContentPack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.PackID]domain.ContentPack)
	if err := readJSON(s.path(), &m); err != nil {
		return err
	}
	m[pack.ID] = pack
	return writeJSON(s.path(), m, 0o600)
}

func (s *PackFileStore) Delete(id domain.PackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.PackID]domain.ContentPack)
	if err := readJSON(s.path(), &m); err != nil {
		return err
	}
	delete(m, id)
	return writeJSON(s.path(), m, 0o600)
}

func (s *PackFileStore) List() ([]domain.ContentPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.PackID]domain.ContentPack)
	if err := readJSON(s.path(), &m); err != nil {
		return nil, err
	}
	out := make([]domain.ContentPack, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ domain.PackStore = (*PackFileStore)(nil)
