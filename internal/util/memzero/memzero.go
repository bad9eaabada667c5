// Package memzero overwrites secret byte material in place. Best-effort:
// it narrows the window an in-memory dump could expose superseded keys.
package memzero

import "crypto/subtle"

// Zero fills b with zeros. The write goes through crypto/subtle so the
// compiler cannot elide it as a dead store.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// Zero32 overwrites a 32-byte key array.
func Zero32(k *[32]byte) {
	Zero(k[:])
}

// Zero64 overwrites a 64-byte key array.
func Zero64(k *[64]byte) {
	Zero(k[:])
}
