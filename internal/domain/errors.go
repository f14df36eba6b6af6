package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled indicates the caller aborted the operation. No partial
	// state was persisted.
	ErrCancelled = errors.New("operation cancelled")

	// ErrReplayRejected indicates a byte-identical resend of a previously
	// accepted message. It is a deliberate drop, not a failure: logged for
	// diagnostics, never surfaced to users.
	ErrReplayRejected = errors.New("replay rejected")

	// ErrBadSignature indicates the detached signature did not verify over
	// the canonical tuple.
	ErrBadSignature = errors.New("bad signature")

	// ErrBadCiphertext indicates the AEAD tag (or the bound plaintext hash)
	// failed to verify. Treated identically to ErrBadSignature from a peer's
	// point of view.
	ErrBadCiphertext = errors.New("bad ciphertext")

	// ErrPackNotFound indicates the pack metadata record does not exist.
	ErrPackNotFound = errors.New("pack not found")
)

// IntegrityError marks a cryptographic integrity failure: a computed hash
// not matching a signed hash, or an authentication tag failure. It is always
// treated as tampering and never downgraded to a warning.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string { return fmt.Sprintf("integrity: %s: %v", e.Op, e.Err) }

func (e *IntegrityError) Unwrap() error { return e.Err }

// TrustError marks a trust-gate rejection: an unknown or revoked key. It is
// recoverable through an explicit user trust action and is never escalated
// automatically.
type TrustError struct {
	KeyID  KeyID
	Reason string
}

func (e *TrustError) Error() string { return fmt.Sprintf("trust: key %q: %s", e.KeyID, e.Reason) }
