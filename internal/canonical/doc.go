// Package canonical is the single point of truth for "what exactly gets
// signed".
//
// Every signer and verifier in packsync feeds the same typed tuple through
// Encode and signs or checks the resulting bytes. The encoding is
// deterministic: a fixed field order, length-prefixed names and values, and
// fixed-width big-endian integers, so two semantically equal inputs can never
// produce different bytes.
//
// The signed payload kinds are explicit structs (PackSigning,
// MessageSigning) rather than free-form maps, making the signed field set a
// compile-time contract.
package canonical
