// Package envelope seals and opens sync messages.
//
// Sealing encrypts the payload with XChaCha20-Poly1305 under a fresh
// 24-byte CSPRNG nonce and signs the canonical tuple {docId, docHash, ts,
// topic, nonce} with Ed25519. Opening runs the checks in a fixed order:
// replay gate, signature, AEAD, and only then records the message id in the
// replay guard — rejected messages are never recorded, so an attacker
// cannot poison the guard against a legitimate resend.
//
// Keys are derived from a shared passphrase with PBKDF2-SHA256 at a
// deliberately slow 100,000 iterations; the same (passphrase, salt) pair
// always yields the same key so peers derive it independently.
package envelope
