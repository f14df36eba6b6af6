package store

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"packsync/internal/domain"
)

// ErrBlobNotFound is returned when a blob reference is unknown.
var ErrBlobNotFound = errors.New("blob not found")

// MemoryBlobStore is an in-process BlobStore used by tests and the sync
// demo wiring.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Read(ref string) (io.ReadCloser, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[ref]
	if !ok {
		return nil, 0, ErrBlobNotFound
	}
	cp := append([]byte(nil), data...)
	return io.NopCloser(bytes.NewReader(cp)), int64(len(cp)), nil
}

func (s *MemoryBlobStore) Write(ref string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[ref] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryBlobStore) Delete(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, ref)
	return nil
}

var _ domain.BlobStore = (*MemoryBlobStore)(nil)
