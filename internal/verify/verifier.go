package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"packsync/internal/canonical"
	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/hashwork"
	"packsync/internal/minisign"
	"packsync/internal/trust"
)

// TrustPrompt is surfaced to the operator when a pack claims an unknown
// key. SourceLabel describes where the pack came from; it is a UI hint
// only, nothing about it is cryptographically bound to the key.
type TrustPrompt struct {
	KeyID       domain.KeyID
	Fingerprint string
	SourceLabel string
}

// TrustDecider resolves a one-time trust decision. Decide may block
// indefinitely on a human; it must honour ctx cancellation. A nil decider
// means unknown keys are rejected outright.
type TrustDecider interface {
	Decide(ctx context.Context, prompt TrustPrompt) (trusted bool, label string, err error)
}

// DeciderFunc adapts a function to the TrustDecider interface.
type DeciderFunc func(ctx context.Context, prompt TrustPrompt) (bool, string, error)

func (f DeciderFunc) Decide(ctx context.Context, prompt TrustPrompt) (bool, string, error) {
	return f(ctx, prompt)
}

// Outcome is the verification verdict.
type Outcome struct {
	Status      domain.VerificationStatus
	Digest      domain.Digest
	KeyID       domain.KeyID
	Fingerprint string
	Reason      string
}

// Verifier drives the pack verification state machine.
type Verifier struct {
	trust      *trust.Service
	packs      domain.PackStore
	blobs      domain.BlobStore
	hasher     hashwork.Hasher
	decider    TrustDecider
	onProgress func(hashwork.Progress) // optional
	now        func() time.Time
	log        *log.Entry
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithDecider installs the trust prompt handler.
func WithDecider(d TrustDecider) Option { return func(v *Verifier) { v.decider = d } }

// WithProgress installs a hashing progress callback.
func WithProgress(fn func(hashwork.Progress)) Option { return func(v *Verifier) { v.onProgress = fn } }

// WithChunkSize overrides the hashing chunk size.
func WithChunkSize(n int) Option { return func(v *Verifier) { v.hasher.ChunkSize = n } }

// New constructs a Verifier.
func New(trustSvc *trust.Service, packs domain.PackStore, blobs domain.BlobStore, logger *log.Logger, opts ...Option) *Verifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	v := &Verifier{
		trust: trustSvc,
		packs: packs,
		blobs: blobs,
		now:   time.Now,
		log:   logger.WithField("component", "verify"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks pack against its signature text.
//
// presentedKey is the public key presented alongside the pack for a
// possible first-time trust decision; when the key id is already trusted
// the stored key is used and the presented one is ignored. While hashing
// and awaiting trust the stored record reads StatusVerifying. Cancellation
// at any point before a terminal state returns domain.ErrCancelled and
// persists no verdict; a digest computed before an interrupted trust wait
// is discarded and the record is restored.
func (v *Verifier) Verify(ctx context.Context, pack domain.ContentPack, presentedKey domain.Ed25519Public, sourceLabel string) (Outcome, error) {
	logger := v.log.WithField("pack", pack.ID)

	sig, err := minisign.Parse(pack.SignatureText)
	if err != nil {
		logger.WithError(err).Warn("signature text rejected")
		return v.terminal(pack, Outcome{
			Status: domain.StatusInvalid,
			KeyID:  pack.KeyID,
			Reason: fmt.Sprintf("signature parse: %v", err),
		})
	}
	if sig.KeyID != pack.KeyID {
		logger.WithField("claimed", pack.KeyID).WithField("signed", sig.KeyID).Warn("key id mismatch")
		return v.terminal(pack, Outcome{
			Status: domain.StatusInvalid,
			KeyID:  pack.KeyID,
			Reason: "claimed key id does not match signature",
		})
	}

	// Mark the record in progress for the duration of hashing and the trust
	// wait, so concurrent readers observe the verifying state. Terminal
	// verdicts overwrite the mark; every other exit restores the record
	// exactly as it was, keeping cancellation free of persisted traces.
	working := pack
	working.Status = domain.StatusVerifying
	working.VerifiedAt = nil
	if err := v.packs.Put(working); err != nil {
		return Outcome{}, fmt.Errorf("persist in-progress status: %w", err)
	}
	settled := false
	defer func() {
		if !settled {
			_ = v.packs.Put(pack)
		}
	}()

	// Hashing. The digest is bound to the blob bytes; metadata is never
	// hashed in its stead.
	digest, size, err := v.hashBlob(ctx, pack)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return Outcome{Status: domain.StatusUnverified}, domain.ErrCancelled
		}
		return Outcome{}, err
	}

	// Trust gate. An untrusted key short-circuits to a terminal verdict
	// before any signature cryptography runs.
	trustedKey, ok, err := v.trust.Get(pack.KeyID)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		trustedKey, ok, err = v.awaitTrust(ctx, pack, presentedKey, sourceLabel)
		if err != nil {
			// Discard the digest: nothing is cached past this boundary,
			// a resumed verify recomputes it.
			return Outcome{Status: domain.StatusUnverified}, err
		}
		if !ok {
			logger.Info("key declined at trust gate")
			settled = true
			return v.terminal(pack, Outcome{
				Status:      domain.StatusUntrustedKey,
				KeyID:       pack.KeyID,
				Fingerprint: v.trust.FingerprintOf(presentedKey),
				Reason:      "signing key not trusted",
			})
		}
	}

	outcome := v.checkSignature(pack, sig, trustedKey, digest, size)
	settled = true
	return v.terminal(pack, outcome)
}

// hashBlob runs the chunked hash over the pack's blob off this goroutine
// and waits for it.
func (v *Verifier) hashBlob(ctx context.Context, pack domain.ContentPack) (domain.Digest, int64, error) {
	src, total, err := v.blobs.Read(pack.BlobRef)
	if err != nil {
		return domain.Digest{}, 0, fmt.Errorf("read blob %q: %w", pack.BlobRef, err)
	}
	defer src.Close()

	job := v.hasher.Start(ctx, src, total)
	for p := range job.Progress() {
		if v.onProgress != nil {
			v.onProgress(p)
		}
	}
	digest, err := job.Wait()
	if err != nil {
		return domain.Digest{}, 0, err
	}
	return digest, job.BytesProcessed(), nil
}

// awaitTrust pauses for the one-time trust decision. ok=false means the
// operator declined.
func (v *Verifier) awaitTrust(ctx context.Context, pack domain.ContentPack, presentedKey domain.Ed25519Public, sourceLabel string) (domain.TrustedKey, bool, error) {
	if v.decider == nil {
		return domain.TrustedKey{}, false, nil
	}
	prompt := TrustPrompt{
		KeyID:       pack.KeyID,
		Fingerprint: v.trust.FingerprintOf(presentedKey),
		SourceLabel: sourceLabel,
	}

	type decision struct {
		trusted bool
		label   string
		err     error
	}
	ch := make(chan decision, 1)
	go func() {
		trusted, label, err := v.decider.Decide(ctx, prompt)
		ch <- decision{trusted, label, err}
	}()

	select {
	case <-ctx.Done():
		return domain.TrustedKey{}, false, errors.Join(domain.ErrCancelled, ctx.Err())
	case d := <-ch:
		if d.err != nil {
			if errors.Is(d.err, context.Canceled) {
				return domain.TrustedKey{}, false, errors.Join(domain.ErrCancelled, d.err)
			}
			return domain.TrustedKey{}, false, d.err
		}
		if !d.trusted {
			return domain.TrustedKey{}, false, nil
		}
		key, err := v.trust.Trust(pack.KeyID, presentedKey, d.label)
		if err != nil {
			return domain.TrustedKey{}, false, err
		}
		return key, true, nil
	}
}

// checkSignature builds the canonical pack tuple over the computed digest
// and verifies the detached signature with the trusted key.
func (v *Verifier) checkSignature(pack domain.ContentPack, sig *minisign.Signature, key domain.TrustedKey, digest domain.Digest, size int64) Outcome {
	out := Outcome{
		Digest:      digest,
		KeyID:       key.KeyID,
		Fingerprint: key.Fingerprint,
	}

	if size != pack.SizeBytes {
		out.Status = domain.StatusInvalid
		out.Reason = fmt.Sprintf("blob is %d bytes, metadata claims %d", size, pack.SizeBytes)
		return out
	}
	// Auxiliary digest comparison is constant time; the asymmetric verify
	// below is timing-hardened internally by the primitive.
	if !pack.SHA256.IsZero() && !digest.Equal(pack.SHA256) {
		out.Status = domain.StatusInvalid
		out.Reason = "blob digest does not match recorded digest"
		return out
	}

	tuple := canonical.PackSigning{
		PackID:    pack.ID,
		SHA256:    digest,
		Size:      size,
		KeyID:     key.KeyID,
		CreatedAt: pack.CreatedAt,
	}
	signed, err := tuple.Bytes()
	if err != nil {
		out.Status = domain.StatusInvalid
		out.Reason = fmt.Sprintf("canonical encode: %v", err)
		return out
	}
	if !crypto.VerifyEd25519(key.PublicKey, signed, sig.SignatureBytes) {
		out.Status = domain.StatusInvalid
		out.Reason = "signature does not verify over pack tuple"
		return out
	}

	out.Status = domain.StatusValid
	return out
}

// terminal persists the verdict on the pack record and returns it. Only
// terminal states reach here; cancellation paths bypass persistence
// entirely.
func (v *Verifier) terminal(pack domain.ContentPack, out Outcome) (Outcome, error) {
	pack.Status = out.Status
	switch out.Status {
	case domain.StatusValid:
		now := v.now().UTC()
		pack.VerifiedAt = &now
		pack.SHA256 = out.Digest
	default:
		pack.VerifiedAt = nil
	}
	if err := v.packs.Put(pack); err != nil {
		return out, fmt.Errorf("persist verdict: %w", err)
	}
	v.log.WithField("pack", pack.ID).WithField("status", out.Status).Info("verification finished")
	return out, nil
}
