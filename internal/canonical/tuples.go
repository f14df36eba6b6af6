package canonical

import (
	"packsync/internal/domain"
)

// PackSigning is the tuple signed over a content pack. The digest is always
// the one computed from the actual blob bytes, never metadata.
type PackSigning struct {
	PackID    domain.PackID
	SHA256    domain.Digest
	Size      int64
	KeyID     domain.KeyID
	CreatedAt int64 // unix ms
}

// Bytes returns the canonical encoding of the tuple.
func (p PackSigning) Bytes() ([]byte, error) {
	return Encode([]Field{
		{Name: "id", Value: string(p.PackID)},
		{Name: "sha256", Value: p.SHA256.Slice()},
		{Name: "size", Value: p.Size},
		{Name: "key_id", Value: string(p.KeyID)},
		{Name: "created_at", Value: p.CreatedAt},
	})
}

// MessageSigning is the tuple signed over a sync message. Topic and Nonce
// are part of the tuple: dropping either would allow cross-topic or replay
// forgeries.
type MessageSigning struct {
	DocID   domain.DocID
	DocHash domain.Digest
	TS      int64 // unix ms
	Topic   domain.Topic
	Nonce   []byte
}

// Bytes returns the canonical encoding of the tuple.
func (m MessageSigning) Bytes() ([]byte, error) {
	return Encode([]Field{
		{Name: "doc_id", Value: string(m.DocID)},
		{Name: "doc_hash", Value: m.DocHash.Slice()},
		{Name: "ts", Value: m.TS},
		{Name: "topic", Value: string(m.Topic)},
		{Name: "nonce", Value: m.Nonce},
	})
}

// ID derives the replay-guard message identifier: a digest of the full
// signed tuple, so a legitimately re-signed retransmission (new ts or nonce)
// counts as a new message while a byte-identical replay does not.
func (m MessageSigning) ID() (domain.Digest, error) {
	b, err := m.Bytes()
	if err != nil {
		return domain.Digest{}, err
	}
	return domain.DigestOf(b), nil
}

// MessageTuple extracts the signing tuple from a wire message.
func MessageTuple(msg *domain.SyncMessage) MessageSigning {
	return MessageSigning{
		DocID:   msg.DocID,
		DocHash: msg.DocHash,
		TS:      msg.TS,
		Topic:   msg.Topic,
		Nonce:   msg.Nonce,
	}
}
