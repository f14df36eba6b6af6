package envelope

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the symmetric key length.
	KeySize = chacha20poly1305.KeySize
	// SaltSize is the KDF salt length.
	SaltSize = 32
	// KDFIterations is the PBKDF2 iteration count. Deliberately slow.
	KDFIterations = 100_000
)

// DeriveKey stretches a passphrase into a 32-byte symmetric key.
// Deterministic per (passphrase, salt): peers sharing the passphrase and
// salt derive the same key independently.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	return pbkdf2.Key([]byte(passphrase), salt, KDFIterations, KeySize, sha256.New), nil
}

// SaltForTopic derives the per-topic KDF salt. Unrelated topics get
// different salts, and with them separated keys, without any out-of-band
// salt exchange.
func SaltForTopic(topic string) []byte {
	sum := sha256.Sum256([]byte("packsync.topic." + topic))
	return sum[:]
}
