package trust

import (
	"time"

	log "github.com/sirupsen/logrus"

	"packsync/internal/crypto"
	"packsync/internal/domain"
)

// Service gates which signing keys are accepted. Reads are safe for
// concurrent use; writes are serialized by the underlying store.
type Service struct {
	store domain.TrustedKeyStore
	now   func() time.Time
	log   *log.Entry
}

// New constructs the trust service over a persistent key store.
func New(store domain.TrustedKeyStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		store: store,
		now:   time.Now,
		log:   logger.WithField("component", "trust"),
	}
}

// IsTrusted reports whether the key id has an active trust record.
func (s *Service) IsTrusted(id domain.KeyID) (bool, error) {
	_, ok, err := s.store.Get(id)
	return ok, err
}

// Get returns the trust record for a key id.
func (s *Service) Get(id domain.KeyID) (domain.TrustedKey, bool, error) {
	return s.store.Get(id)
}

// List returns all trust records.
func (s *Service) List() ([]domain.TrustedKey, error) {
	return s.store.List()
}

// Trust records a key as trusted. Callers must invoke this only after an
// explicit confirmation; records are immutable, so re-trusting an already
// trusted key id is an error rather than a silent overwrite.
func (s *Service) Trust(id domain.KeyID, pub domain.Ed25519Public, label string) (domain.TrustedKey, error) {
	if _, exists, err := s.store.Get(id); err != nil {
		return domain.TrustedKey{}, err
	} else if exists {
		return domain.TrustedKey{}, &domain.TrustError{KeyID: id, Reason: "already trusted"}
	}

	key := domain.TrustedKey{
		KeyID:       id,
		PublicKey:   pub,
		Fingerprint: s.FingerprintOf(pub),
		TrustedAt:   s.now().UTC(),
		Label:       label,
	}
	if err := s.store.Put(key); err != nil {
		return domain.TrustedKey{}, err
	}
	s.log.WithField("key_id", id).WithField("fingerprint", key.Fingerprint).Info("key trusted")
	return key, nil
}

// Revoke removes a trust record.
func (s *Service) Revoke(id domain.KeyID) error {
	if _, exists, err := s.store.Get(id); err != nil {
		return err
	} else if !exists {
		return &domain.TrustError{KeyID: id, Reason: "not trusted"}
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.log.WithField("key_id", id).Info("key revoked")
	return nil
}

// FingerprintOf derives the display fingerprint of a public key.
func (s *Service) FingerprintOf(pub domain.Ed25519Public) string {
	return crypto.Fingerprint(pub.Slice())
}
