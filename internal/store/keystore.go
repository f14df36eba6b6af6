package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/envelope"
)

const (
	identityFile = "identity.enc"

	// The current supported version of the encrypted blob format on disk.
	keystoreFormatVersion = 1
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or
	// the ciphertext has been modified or corrupted.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

	// ErrNoIdentity is returned when no identity has been initialised.
	ErrNoIdentity = errors.New("no identity; run init first")
)

// keystoreBlob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type keystoreBlob struct {
	V          int    `json:"v"`
	Salt       []byte `json:"salt"`
	Iterations int    `json:"kdf_iterations"`
	Nonce      []byte `json:"nonce"`
	Cipher     []byte `json:"cipher"`
}

// IdentityFileStore stores the local signing identity encrypted under a
// passphrase-derived key.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewIdentityFileStore(dir string) *IdentityFileStore { return &IdentityFileStore{dir: dir} }

func (s *IdentityFileStore) path() string { return filepath.Join(s.dir, identityFile) }

func (s *IdentityFileStore) SaveIdentity(id domain.Identity, passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	blob, err := sealKeystore(passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(s.path(), blob, 0o600)
}

func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return domain.Identity{}, ErrNoIdentity
	}
	if err != nil {
		return domain.Identity{}, err
	}
	raw, err := openKeystore(passphrase, blob)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(raw)

	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

func sealKeystore(passphrase string, raw []byte) ([]byte, error) {
	salt := make([]byte, envelope.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := envelope.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(keystoreBlob{
		V:          keystoreFormatVersion,
		Salt:       salt,
		Iterations: envelope.KDFIterations,
		Nonce:      nonce,
		Cipher:     ct,
	})
}

func openKeystore(passphrase string, blob []byte) ([]byte, error) {
	var bl keystoreBlob
	if err := json.Unmarshal(blob, &bl); err != nil {
		return nil, err
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := envelope.DeriveKey(passphrase, bl.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, bl.Nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

var _ domain.IdentityStore = (*IdentityFileStore)(nil)
