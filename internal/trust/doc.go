// Package trust is the trust-on-first-use gate for signing keys.
//
// A key becomes trusted only through an explicit Trust call made after the
// caller confirmed the decision with a human; the service itself never
// auto-inserts. Verification elsewhere is impossible to pass for a key id
// absent from this store, no matter how plausible the accompanying
// signature looks.
package trust
