package crypto

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"armorcrypt/internal/domain"
)

// GenerateEd25519 returns a new Ed25519 signing key pair read from rng.
func GenerateEd25519(rng io.Reader) (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	pk, sk, err := ed25519.GenerateKey(rng)
	if err != nil {
		return priv, pub, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	copy(priv[:], sk)
	copy(pub[:], pk)
	return priv, pub, nil
}

// Sign signs msg with priv and returns the 64-byte signature.
func Sign(priv domain.Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// Verify reports whether sig is a valid signature of msg under pub.
// Wrong-length input is a verification failure, never a panic.
func Verify(pub domain.Ed25519Public, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}

// VerifyKey is Verify over raw key bytes, failing closed on malformed keys.
func VerifyKey(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
