// Package verify orchestrates content-pack verification.
//
// A verify request moves a pack through Unverified → Hashing →
// {AwaitingTrustDecision | SignatureChecking} → {Valid | Invalid |
// Untrusted}. The digest is always computed from the actual blob bytes —
// never taken from metadata — and the Ed25519 signature is checked over the
// canonical pack tuple with the public key held in the trust store. An
// unknown key pauses the process on a TrustDecider until the operator
// trusts or declines; cancelling anywhere before a terminal state persists
// nothing.
package verify
