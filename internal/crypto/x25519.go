package crypto

import (
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"

	"armorcrypt/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair read from rng.
// The private key is clamped per RFC 7748.
func GenerateX25519(rng io.Reader) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if err = RandRead(rng, priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
		return
	}
	copy(pub[:], pb)
	return
}

// DH computes the X25519 shared secret between priv and pub.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	return out, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
