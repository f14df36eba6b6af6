package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"packsync/internal/domain"
)

func TestRebuildReplacesIndex(t *testing.T) {
	idx := NewMemory()

	n, err := idx.Rebuild(context.Background(), []domain.IndexDocument{
		{ID: "d1", Text: "alpine trail map"},
		{ID: "d2", Text: "coastal trail notes"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []domain.DocID{"d1", "d2"}, idx.Search("trail"))
	require.ElementsMatch(t, []domain.DocID{"d1"}, idx.Search("Alpine"))

	// A rebuild from a smaller corpus drops stale terms entirely.
	n, err = idx.Rebuild(context.Background(), []domain.IndexDocument{
		{ID: "d2", Text: "coastal notes"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Empty(t, idx.Search("trail"))
	require.ElementsMatch(t, []domain.DocID{"d2"}, idx.Search("coastal"))
}

func TestRebuildHonoursCancellation(t *testing.T) {
	idx := NewMemory()
	_, err := idx.Rebuild(context.Background(), []domain.IndexDocument{{ID: "d1", Text: "keep"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Rebuild(ctx, []domain.IndexDocument{{ID: "d2", Text: "new"}})
	require.Error(t, err)

	// The old snapshot survives an aborted rebuild.
	require.ElementsMatch(t, []domain.DocID{"d1"}, idx.Search("keep"))
}
