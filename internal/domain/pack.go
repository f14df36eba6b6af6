package domain

import "time"

// VerificationStatus is the user-visible verification verdict of a pack.
type VerificationStatus string

const (
	StatusUnverified   VerificationStatus = "unverified"
	StatusVerifying    VerificationStatus = "verifying"
	StatusValid        VerificationStatus = "valid"
	StatusInvalid      VerificationStatus = "invalid"
	StatusUntrustedKey VerificationStatus = "untrusted-key"
)

// ContentPack is the metadata record for a downloaded content pack.
//
// SHA256 is only ever written by the verifier from bytes it hashed itself;
// it is never taken on faith from downloaded metadata. Status reaches
// StatusValid only when the blob bytes hashed to the signed digest, the
// signature over the canonical pack tuple verified, and the signing key was
// present in the trust store.
type ContentPack struct {
	ID            PackID             `json:"id"`
	SizeBytes     int64              `json:"size_bytes"`
	SHA256        Digest             `json:"sha256"`
	KeyID         KeyID              `json:"key_id"`
	SignatureText string             `json:"signature_text"`
	Status        VerificationStatus `json:"status"`
	VerifiedAt    *time.Time         `json:"verified_at,omitempty"`
	CreatedAt     int64              `json:"created_at"` // unix ms, part of the signed tuple
	BlobRef       string             `json:"blob_ref"`
}

// ContentPrefix is the cache-key prefix under which all cached responses for
// a pack's content are stored. PackLifecycleCoordinator evicts by this prefix.
func ContentPrefix(id PackID) string { return "pack/" + string(id) + "/" }
