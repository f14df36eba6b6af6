package trust_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/store"
	"packsync/internal/trust"
)

func newService(t *testing.T, dir string) *trust.Service {
	t.Helper()
	return trust.New(store.NewTrustedKeyFileStore(dir), nil)
}

func TestTrustRevokeCycle(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, dir)

	_, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)

	trusted, err := svc.IsTrusted("K1")
	require.NoError(t, err)
	require.False(t, trusted, "fresh store must trust nothing")

	key, err := svc.Trust("K1", pub, "field kit")
	require.NoError(t, err)
	require.Equal(t, domain.KeyID("K1"), key.KeyID)
	require.Equal(t, svc.FingerprintOf(pub), key.Fingerprint)
	require.Equal(t, "field kit", key.Label)

	trusted, err = svc.IsTrusted("K1")
	require.NoError(t, err)
	require.True(t, trusted)

	require.NoError(t, svc.Revoke("K1"))
	trusted, err = svc.IsTrusted("K1")
	require.NoError(t, err)
	require.False(t, trusted, "revoked key must not stay trusted")
}

func TestTrustIsImmutable(t *testing.T) {
	svc := newService(t, t.TempDir())

	_, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	_, err = svc.Trust("K1", pub, "")
	require.NoError(t, err)

	_, pub2, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	_, err = svc.Trust("K1", pub2, "")
	var te *domain.TrustError
	require.True(t, errors.As(err, &te), "re-trust must fail with TrustError, got %v", err)
}

func TestRevokeUnknownKey(t *testing.T) {
	svc := newService(t, t.TempDir())
	var te *domain.TrustError
	require.True(t, errors.As(svc.Revoke("nope"), &te))
}

func TestTrustSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, dir)

	_, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	_, err = svc.Trust("K1", pub, "")
	require.NoError(t, err)

	// New service over the same directory: trust decisions persist.
	svc2 := newService(t, dir)
	trusted, err := svc2.IsTrusted("K1")
	require.NoError(t, err)
	require.True(t, trusted)

	keys, err := svc2.List()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, pub, keys[0].PublicKey)
}
