package envelope

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/chacha20poly1305"

	"packsync/internal/canonical"
	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/replay"
)

// Service seals outgoing and opens incoming sync messages for one topic
// key. The signing key authenticates our messages; the verifying key checks
// the peer's.
type Service struct {
	topic     domain.Topic
	aead      cipher.AEAD
	signPriv  domain.Ed25519Private
	verifyPub domain.Ed25519Public
	guard     *replay.Guard
	now       func() time.Time
	log       *log.Entry
}

// New builds a Service. key must be KeySize bytes (see DeriveKey); guard is
// required on the receive path.
func New(
	topic domain.Topic,
	key []byte,
	signPriv domain.Ed25519Private,
	verifyPub domain.Ed25519Public,
	guard *replay.Guard,
	logger *log.Logger,
) (*Service, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("envelope key: %w", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		topic:     topic,
		aead:      aead,
		signPriv:  signPriv,
		verifyPub: verifyPub,
		guard:     guard,
		now:       time.Now,
		log:       logger.WithField("component", "envelope").WithField("topic", topic),
	}, nil
}

// Seal encrypts and signs payload into a wire message.
//
// Every call draws a fresh random nonce; nonce reuse under the same key is
// a critical failure, so nonces are never caller-supplied or derived from
// counters that could collide across restarts. A CSPRNG failure aborts the
// seal.
func (s *Service) Seal(docID domain.DocID, payload []byte) (*domain.SyncMessage, error) {
	nonce := make([]byte, domain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, payload, nil)

	tuple := canonical.MessageSigning{
		DocID:   docID,
		DocHash: domain.DigestOf(payload),
		TS:      s.now().UnixMilli(),
		Topic:   s.topic,
		Nonce:   nonce,
	}
	signed, err := tuple.Bytes()
	if err != nil {
		return nil, err
	}

	return &domain.SyncMessage{
		DocID:      tuple.DocID,
		DocHash:    tuple.DocHash,
		TS:         tuple.TS,
		Topic:      tuple.Topic,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Signature:  crypto.SignEd25519(s.signPriv, signed),
	}, nil
}

// Open verifies and decrypts an incoming message.
//
// Check order: replay gate, signature over the canonical tuple, AEAD
// decrypt, plaintext hash binding. The message id is recorded only after
// every check passed. Signature and ciphertext failures are reported with
// distinct errors for diagnostics but must be treated identically on the
// wire.
func (s *Service) Open(msg *domain.SyncMessage) ([]byte, error) {
	if msg.Topic != s.topic {
		return nil, fmt.Errorf("%w: topic %q", domain.ErrBadSignature, msg.Topic)
	}
	if len(msg.Nonce) != domain.NonceSize || len(msg.Signature) != domain.SignatureSize {
		return nil, domain.ErrBadSignature
	}

	tuple := canonical.MessageTuple(msg)
	msgID, err := tuple.ID()
	if err != nil {
		return nil, err
	}
	if s.guard.Seen(msgID) {
		s.log.WithField("doc", msg.DocID).Debug("dropping replayed message")
		return nil, domain.ErrReplayRejected
	}

	signed, err := tuple.Bytes()
	if err != nil {
		return nil, err
	}
	if !crypto.VerifyEd25519(s.verifyPub, signed, msg.Signature) {
		s.log.WithField("doc", msg.DocID).Warn("message signature mismatch")
		return nil, domain.ErrBadSignature
	}

	payload, err := s.aead.Open(nil, msg.Nonce, msg.Ciphertext, nil)
	if err != nil {
		s.log.WithField("doc", msg.DocID).Warn("message tag mismatch")
		return nil, &domain.IntegrityError{Op: "aead open", Err: domain.ErrBadCiphertext}
	}
	if !domain.DigestOf(payload).Equal(msg.DocHash) {
		s.log.WithField("doc", msg.DocID).Warn("plaintext hash mismatch")
		return nil, &domain.IntegrityError{Op: "doc hash", Err: domain.ErrBadCiphertext}
	}

	// Record last: a rejected message must never occupy the guard, or an
	// attacker could block a legitimate resend. CheckAndRecord is atomic,
	// so of two racing receives of the same bytes only one lands here
	// first.
	if !s.guard.CheckAndRecord(msgID) {
		s.log.WithField("doc", msg.DocID).Debug("lost replay race")
		return nil, domain.ErrReplayRejected
	}
	return payload, nil
}

// MessageID derives the replay-guard identifier of a wire message.
func MessageID(msg *domain.SyncMessage) (domain.Digest, error) {
	return canonical.MessageTuple(msg).ID()
}
