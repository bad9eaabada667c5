package crypto_test

import (
	"crypto/rand"
	"testing"

	"armorcrypt/internal/crypto"
)

func TestSignVerify(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	msg := []byte("attest this")
	sig := crypto.Sign(priv, msg)
	if !crypto.Verify(pub, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	sig[0] ^= 0x01
	if crypto.Verify(pub, msg, sig) {
		t.Fatal("tampered signature accepted")
	}
}

func TestVerifyFailsClosedOnLength(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	msg := []byte("attest this")
	sig := crypto.Sign(priv, msg)

	if crypto.Verify(pub, msg, sig[:32]) {
		t.Fatal("short signature accepted")
	}
	if crypto.VerifyKey(pub.Slice()[:16], msg, sig) {
		t.Fatal("short public key accepted")
	}
	if crypto.VerifyKey(pub.Slice(), msg, nil) {
		t.Fatal("nil signature accepted")
	}
	if !crypto.VerifyKey(pub.Slice(), msg, sig) {
		t.Fatal("valid raw-byte verification rejected")
	}
}

func TestDHSymmetry(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	ab, err := crypto.DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	ba, err := crypto.DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	if ab != ba {
		t.Fatal("shared secrets differ")
	}
	if ab == [32]byte{} {
		t.Fatal("shared secret is zero")
	}
}

func TestFingerprintStable(t *testing.T) {
	_, pub, err := crypto.GenerateEd25519(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	a := crypto.Fingerprint(pub.Slice())
	b := crypto.Fingerprint(pub.Slice())
	if a != b {
		t.Fatalf("fingerprint not stable: %q vs %q", a, b)
	}
	if len(a) != 20 {
		t.Fatalf("fingerprint length %d, want 20", len(a))
	}
}
