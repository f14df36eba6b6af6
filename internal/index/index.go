// Package index is a minimal rebuildable search index. The sync subsystem
// consumes reindexing as an opaque call; this implementation exists for
// wiring and tests, not as a search engine.
package index

import (
	"context"
	"strings"
	"sync"

	"packsync/internal/domain"
)

// Memory is an in-process token index rebuilt from scratch on every
// Rebuild. Lookups between rebuilds are served from the last snapshot.
type Memory struct {
	mu    sync.RWMutex
	terms map[string][]domain.DocID
}

func NewMemory() *Memory {
	return &Memory{terms: make(map[string][]domain.DocID)}
}

// Rebuild replaces the index with one built from docs and returns how many
// documents were indexed.
func (m *Memory) Rebuild(ctx context.Context, docs []domain.IndexDocument) (int, error) {
	terms := make(map[string][]domain.DocID)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for _, tok := range strings.Fields(strings.ToLower(doc.Text)) {
			terms[tok] = append(terms[tok], doc.ID)
		}
	}

	m.mu.Lock()
	m.terms = terms
	m.mu.Unlock()
	return len(docs), nil
}

// Search returns the ids of documents containing term.
func (m *Memory) Search(term string) []domain.DocID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.DocID(nil), m.terms[strings.ToLower(term)]...)
}

var _ domain.SearchIndex = (*Memory)(nil)
