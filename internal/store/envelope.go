package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"armorcrypt/internal/util/memzero"
)

const (
	// The current supported version of the encrypted file format.
	envelopeVersion = 1

	saltBytes = 16

	// Ceiling on the file-supplied Argon2 memory cost, in KiB.
	maxArgonMemory = 1 << 21
)

// Returned when the passphrase is incorrect or the file was modified.
var errWrongPassphrase = errors.New("wrong passphrase or corrupted file")

// blob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type blob struct {
	V       int    `json:"v"`
	Salt    []byte `json:"salt"`
	Time    uint32 `json:"argon_t"`
	Memory  uint32 `json:"argon_m"`
	Threads uint8  `json:"argon_p"`
	Cipher  []byte `json:"cipher"`
}

// encrypt derives a key from passphrase with Argon2id and seals raw.
func encrypt(passphrase string, raw []byte) ([]byte, error) {
	var salt [saltBytes]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	t, m, p := argonParamsDefault()
	key := argon2.IDKey([]byte(passphrase), salt[:], t, m, p, chacha20poly1305.KeySize)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{
		V:       envelopeVersion,
		Salt:    salt[:],
		Time:    t,
		Memory:  m,
		Threads: p,
		Cipher:  ct,
	})
}

// decrypt opens the JSON blob using a key derived from passphrase.
func decrypt(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported file version %d", bl.V)
	}
	// The KDF parameters come from the untrusted file. argon2.IDKey panics
	// on zero rounds, and an oversized memory cost is a denial of service,
	// so anything outside sane bounds is treated as corruption.
	if bl.Time == 0 || bl.Threads == 0 ||
		bl.Memory < 8*uint32(bl.Threads) || bl.Memory > maxArgonMemory {
		return nil, errWrongPassphrase
	}

	key := argon2.IDKey([]byte(passphrase), bl.Salt, bl.Time, bl.Memory, bl.Threads, chacha20poly1305.KeySize)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// Tunables for Argon2id key derivation.
func argonParamsDefault() (t, m uint32, p uint8) { return 1, 1 << 16, 4 }
