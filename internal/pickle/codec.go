package pickle

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/util/memzero"
)

const (
	// The current supported version of the pickle blob format.
	formatVersion = 1

	saltSize = 16
	infoTag  = "ARMOR_PICKLE"
)

// Seal CBOR-encodes v and encrypts it under key. The returned blob is
// self-contained: version byte, salt, then ciphertext.
func Seal(key []byte, v any) ([]byte, error) {
	raw, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("pickle encode: %w", err)
	}
	defer memzero.Zero(raw)

	var salt [saltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}

	aead, err := newAEAD(key, salt[:])
	if err != nil {
		return nil, err
	}
	// Zero nonce: the salt-bound key is unique per blob.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	blob := make([]byte, 0, 1+saltSize+len(ct))
	blob = append(blob, formatVersion)
	blob = append(blob, salt[:]...)
	blob = append(blob, ct...)
	return blob, nil
}

// Open decrypts blob under key and CBOR-decodes the plaintext into v.
// Any structural or integrity failure is reported as ErrCorruptPickle.
func Open(key, blob []byte, v any) error {
	if len(blob) < 1+saltSize || blob[0] != formatVersion {
		return domain.ErrCorruptPickle
	}
	salt := blob[1 : 1+saltSize]

	aead, err := newAEAD(key, salt)
	if err != nil {
		return err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	raw, err := aead.Open(nil, nonce[:], blob[1+saltSize:], salt)
	if err != nil {
		return domain.ErrCorruptPickle
	}
	defer memzero.Zero(raw)

	if err := cbor.Unmarshal(raw, v); err != nil {
		return domain.ErrCorruptPickle
	}
	return nil
}

// newAEAD derives the blob cipher from the pickle key and salt. An empty
// key still yields a real AEAD key, so the blob stays tamper-evident.
func newAEAD(key, salt []byte) (cipher.AEAD, error) {
	sealKey := make([]byte, chacha20poly1305.KeySize)
	defer memzero.Zero(sealKey)
	r := hkdf.New(sha256.New, key, salt, []byte(infoTag))
	if _, err := io.ReadFull(r, sealKey); err != nil {
		return nil, fmt.Errorf("pickle key derivation: %w", err)
	}
	return chacha20poly1305.New(sealKey)
}
