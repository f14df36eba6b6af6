package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// PackID identifies a content pack.
type PackID string

// String returns the string form of the pack identifier.
func (id PackID) String() string { return string(id) }

// KeyID identifies a signing key as claimed by a pack or peer.
type KeyID string

// String returns the string form of the key identifier.
func (id KeyID) String() string { return string(id) }

// Topic is a sync channel name.
type Topic string

// String returns the string form of the topic.
func (t Topic) String() string { return string(t) }

// DocID identifies a document inside a sync topic.
type DocID string

// String returns the string form of the document identifier.
func (id DocID) String() string { return string(id) }

// Digest is a SHA-256 digest.
type Digest [sha256.Size]byte

// DigestOf hashes data with SHA-256.
func DigestOf(data []byte) Digest { return Digest(sha256.Sum256(data)) }

// ParseDigest decodes a 64-character hex string into a Digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != sha256.Size*2 {
		return d, fmt.Errorf("digest hex must be %d chars, got %d", sha256.Size*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("decode digest hex: %w", err)
	}
	copy(d[:], raw)
	return d, nil
}

// Slice returns the digest as a []byte.
func (d Digest) Slice() []byte { return d[:] }

// String returns the hex form of the digest.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether the digest is all zero bytes.
func (d Digest) IsZero() bool { return d == Digest{} }

// Equal compares two digests in constant time.
func (d Digest) Equal(other Digest) bool {
	return subtle.ConstantTimeCompare(d[:], other[:]) == 1
}
