package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"packsync/internal/domain"
)

// reindexMaxRetries bounds the rebuild backoff so a broken index surfaces as
// an error instead of retrying forever.
const reindexMaxRetries = 4

// DocSource yields the current document set for an index rebuild. The
// coordinator calls it after the pack's records are gone, so the returned
// set no longer contains the removed pack.
type DocSource func(ctx context.Context) ([]domain.IndexDocument, error)

// Report summarises a completed removal.
type Report struct {
	DocsReindexed int
	CacheEvicted  int
}

// Coordinator removes a pack as one user-visible operation. Steps run in a
// fixed order: metadata delete, cache evict by content prefix, blob delete,
// index rebuild. A later step failing never restores an earlier one; removed
// content must stay unreachable even when the removal as a whole errors.
type Coordinator struct {
	packs domain.PackStore
	cache domain.CacheStore
	blobs domain.BlobStore
	index domain.SearchIndex
	docs  DocSource
	log   *log.Entry
}

// NewCoordinator wires a coordinator over its four collaborators.
func NewCoordinator(
	packs domain.PackStore,
	cache domain.CacheStore,
	blobs domain.BlobStore,
	index domain.SearchIndex,
	docs DocSource,
	logger *log.Logger,
) *Coordinator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Coordinator{
		packs: packs,
		cache: cache,
		blobs: blobs,
		index: index,
		docs:  docs,
		log:   logger.WithField("component", "lifecycle"),
	}
}

// RemovePack deletes pack id everywhere it is materialised. The index
// rebuild is retried with exponential backoff; if it still fails, the
// deletions stand and the error is returned for the caller to retry.
func (c *Coordinator) RemovePack(ctx context.Context, id domain.PackID) (Report, error) {
	pack, ok, err := c.packs.Get(id)
	if err != nil {
		return Report{}, fmt.Errorf("load pack %s: %w", id, err)
	}
	if !ok {
		return Report{}, domain.ErrPackNotFound
	}

	if err := c.packs.Delete(id); err != nil {
		return Report{}, fmt.Errorf("delete pack metadata %s: %w", id, err)
	}

	evicted := c.cache.EvictMatching(domain.ContentPrefix(id))

	var blobErr error
	if pack.BlobRef != "" {
		if err := c.blobs.Delete(pack.BlobRef); err != nil {
			// Metadata and cache are already gone, so the content is
			// unreachable through us. Keep going so the index stops
			// referencing it, then report the failure.
			blobErr = fmt.Errorf("delete blob %s: %w", pack.BlobRef, err)
			c.log.WithError(err).WithField("pack", id).Warn("blob delete failed")
		}
	}

	reindexed, reindexErr := c.rebuildIndex(ctx)
	report := Report{DocsReindexed: reindexed, CacheEvicted: evicted}
	if err := errors.Join(blobErr, reindexErr); err != nil {
		return report, err
	}

	c.log.WithFields(log.Fields{
		"pack":      id,
		"evicted":   evicted,
		"reindexed": reindexed,
	}).Info("pack removed")
	return report, nil
}

func (c *Coordinator) rebuildIndex(ctx context.Context) (int, error) {
	docs, err := c.docs(ctx)
	if err != nil {
		return 0, fmt.Errorf("gather documents: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 0

	var n int
	err = backoff.Retry(func() error {
		var rerr error
		n, rerr = c.index.Rebuild(ctx, docs)
		if rerr != nil {
			c.log.WithError(rerr).Debug("index rebuild attempt failed")
		}
		return rerr
	}, backoff.WithContext(backoff.WithMaxRetries(policy, reindexMaxRetries), ctx))
	if err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return n, nil
}
