package domain

import "time"

// NonceSize is the XChaCha20-Poly1305 nonce length used on the wire.
const NonceSize = 24

// SignatureSize is the Ed25519 signature length used on the wire.
const SignatureSize = 64

// SyncMessage is the wire unit of the delta-sync protocol.
//
// The signature covers the canonical tuple {docId, docHash, ts, topic,
// nonce} — never the raw ciphertext alone, and never a subset omitting Topic
// or Nonce, since either omission would enable cross-topic or replay
// forgeries. The ciphertext's own integrity is carried by the AEAD tag.
type SyncMessage struct {
	DocID      DocID  `json:"doc_id"`
	DocHash    Digest `json:"doc_hash"`
	TS         int64  `json:"ts"` // sender clock, unix ms
	Topic      Topic  `json:"topic"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Signature  []byte `json:"signature"`
}

// ReplayRecord marks a message identifier as seen at a point in time.
type ReplayRecord struct {
	MsgID  Digest    `json:"msg_id"`
	SeenAt time.Time `json:"seen_at"`
}
