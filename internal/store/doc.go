// Package store provides persistence for packsync's owned state.
//
// It contains concrete implementations of the domain storage interfaces.
// Small records (trust decisions, replay records, pack metadata) are JSON
// files written atomically via a temp file and rename; pack blobs live in a
// Badger key-value database. All methods are concurrency-safe via internal
// locking. Stored files live under the configured home directory.
//
// The package includes stores for:
//   - Trust decisions (TrustedKeyFileStore)
//   - Replay records (ReplayFileStore)
//   - Pack metadata (PackFileStore)
//   - The local identity, encrypted at rest (IdentityFileStore)
//   - Pack blobs (BadgerBlobStore)
package store
