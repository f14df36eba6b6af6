// Package crypto exposes the minimal primitives used by packsync.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// All functions use fixed-size array types from internal/domain to avoid
// accidental reallocations. Callers should treat returned secrets as
// sensitive and rely on Wipe when practical to reduce lifetime in memory.
package crypto
