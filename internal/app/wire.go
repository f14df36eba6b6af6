package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"packsync/internal/cache"
	"packsync/internal/cadence"
	"packsync/internal/domain"
	"packsync/internal/index"
	"packsync/internal/lifecycle"
	"packsync/internal/relay"
	"packsync/internal/store"
	"packsync/internal/transport"
	"packsync/internal/trust"
)

// Wire bundles all stores, services, and transports for the commands.
type Wire struct {
	Config   Config
	Log      *log.Logger
	Identity domain.IdentityStore
	Packs    domain.PackStore
	Blobs    domain.BlobStore
	Trust    *trust.Service
	Cache    *cache.ResponseCache
	Index    *index.Memory
	Removal  *lifecycle.Coordinator
	Cadence  *cadence.Controller
	Bus      domain.Transport

	blobs *store.BadgerBlobStore
}

// NewWire constructs the dependency graph from cfg. Call Close when done.
func NewWire(cfg Config) (*Wire, error) {
	logger := log.New()
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create home %s: %w", cfg.Home, err)
	}

	blobs, err := store.OpenBadgerBlobStore(filepath.Join(cfg.Home, "blobs"), logger)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	packs := store.NewPackFileStore(cfg.Home)
	trustSvc := trust.New(store.NewTrustedKeyFileStore(cfg.Home), logger)
	respCache := cache.New(0)
	searchIdx := index.NewMemory()

	removal := lifecycle.NewCoordinator(
		packs, respCache, blobs, searchIdx, packDocs(packs), logger,
	)

	var bus domain.Transport
	if cfg.RelayURL != "" {
		bus = relay.NewClient(cfg.RelayURL, time.Duration(cfg.Poll), logger)
	} else {
		bus = transport.NewBus(logger)
	}

	return &Wire{
		Config:   cfg,
		Log:      logger,
		Identity: store.NewIdentityFileStore(cfg.Home),
		Packs:    packs,
		Blobs:    blobs,
		Trust:    trustSvc,
		Cache:    respCache,
		Index:    searchIdx,
		Removal:  removal,
		Cadence:  cadence.NewController(cadence.Profile(cfg.Profile)),
		Bus:      bus,
		blobs:    blobs,
	}, nil
}

// Close releases held resources, currently the blob database.
func (w *Wire) Close() error {
	if w.blobs != nil {
		return w.blobs.Close()
	}
	return nil
}

// packDocs feeds the search index from the pack metadata records.
func packDocs(packs domain.PackStore) lifecycle.DocSource {
	return func(context.Context) ([]domain.IndexDocument, error) {
		list, err := packs.List()
		if err != nil {
			return nil, err
		}
		docs := make([]domain.IndexDocument, 0, len(list))
		for _, p := range list {
			docs = append(docs, domain.IndexDocument{
				ID:   domain.DocID(p.ID),
				Text: string(p.ID),
			})
		}
		return docs, nil
	}
}
