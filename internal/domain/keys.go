package domain

import "time"

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key.
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// Identity is the local signing identity, stored encrypted at rest.
type Identity struct {
	KeyID     KeyID          `json:"key_id"`
	Pub       Ed25519Public  `json:"pub"`
	Priv      Ed25519Private `json:"priv"`
	CreatedAt int64          `json:"created_at"`
}

// TrustedKey is a public key accepted through an explicit trust-on-first-use
// decision. Records are immutable once created; the only mutation is removal
// via an explicit revoke.
type TrustedKey struct {
	KeyID       KeyID         `json:"key_id"`
	PublicKey   Ed25519Public `json:"public_key"`
	Fingerprint string        `json:"fingerprint"`
	TrustedAt   time.Time     `json:"trusted_at"`
	Label       string        `json:"label,omitempty"`
}
