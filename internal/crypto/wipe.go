package crypto

import "crypto/subtle"

// Wipe overwrites b with zeros in a constant-time friendly way. Best effort:
// it reduces, not eliminates, the lifetime of secrets in memory.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}
