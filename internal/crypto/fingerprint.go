package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Number of leading digest bytes a fingerprint shows.
const fingerprintLen = 10

// Fingerprint renders a short, display-friendly identifier for public key
// material: the leading bytes of its SHA-256 digest in hex. Collisions are
// acceptable here; the value is for human comparison and file naming, not
// authentication.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:fingerprintLen])
}
