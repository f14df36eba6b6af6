package domain

import (
	"context"
	"io"
)

// TrustedKeyStore persists trust decisions. Implementations must survive
// process restarts without losing records.
type TrustedKeyStore interface {
	Get(id KeyID) (TrustedKey, bool, error)
	Put(key TrustedKey) error
	Delete(id KeyID) error
	List() ([]TrustedKey, error)
}

// ReplayStore persists seen-message records so a restart does not re-open a
// replay window.
type ReplayStore interface {
	Load() ([]ReplayRecord, error)
	Save(records []ReplayRecord) error
}

// PackStore persists content-pack metadata records.
type PackStore interface {
	Get(id PackID) (ContentPack, bool, error)
	Put(pack ContentPack) error
	Delete(id PackID) error
	List() ([]ContentPack, error)
}

// IdentityStore persists the local signing identity, encrypted under a
// passphrase.
type IdentityStore interface {
	SaveIdentity(id Identity, passphrase string) error
	LoadIdentity(passphrase string) (Identity, error)
}

// BlobStore holds pack bytes by opaque reference. The sync subsystem treats
// it as an external collaborator; only these three primitives are assumed.
type BlobStore interface {
	Read(ref string) (io.ReadCloser, int64, error)
	Write(ref string, data []byte) error
	Delete(ref string) error
}

// CacheStore is the response cache collaborator. EvictMatching removes every
// entry whose key has the given prefix and reports how many were dropped.
type CacheStore interface {
	Set(key string, value []byte)
	Get(key string) ([]byte, bool)
	EvictMatching(prefix string) int
}

// IndexDocument is the unit handed to the search index on rebuild.
type IndexDocument struct {
	ID   DocID
	Text string
}

// SearchIndex is the search collaborator, consumed as an opaque rebuild
// call.
type SearchIndex interface {
	Rebuild(ctx context.Context, docs []IndexDocument) (int, error)
}

// Transport is the gossip collaborator. Publish sends opaque bytes on a
// topic; Subscribe registers a handler and returns a cancel function that
// stops delivery. Peer discovery and framing are the transport's concern.
type Transport interface {
	Publish(ctx context.Context, topic Topic, data []byte) error
	Subscribe(topic Topic, handler func(data []byte)) (cancel func(), err error)
}
