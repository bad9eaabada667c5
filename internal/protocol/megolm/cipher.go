package megolm

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/util/memzero"
)

// KDF labels and sizes of the aes-sha2 suite. Part of the wire contract.
const (
	keysInfo = "MEGOLM_KEYS"

	aesKeySize = 32
	macKeySize = 32
	ivSize     = aes.BlockSize
	macSize    = 8
)

// advance steps the ratchet one index forward. One-way: HMAC-SHA256 of the
// chain under itself with a fixed octet.
func advance(chain [32]byte) [32]byte {
	h := hmac.New(sha256.New, chain[:])
	h.Write([]byte{0x01})
	var next [32]byte
	copy(next[:], h.Sum(nil))
	return next
}

// advanceTo ratchets a copy of chain from index from up to index to. Skipped
// indices are single one-way steps; there is no way to reverse any of them.
func advanceTo(chain [32]byte, from, to uint32) [32]byte {
	for i := from; i < to; i++ {
		prev := chain
		chain = advance(chain)
		memzero.Zero32(&prev)
	}
	return chain
}

// messageKeys expands the chain at its current position into the AES key,
// MAC key and CBC IV for exactly one message.
func messageKeys(chain [32]byte) (aesKey, macKey, iv []byte, err error) {
	block := make([]byte, aesKeySize+macKeySize+ivSize)
	r := hkdf.New(sha256.New, chain[:], nil, []byte(keysInfo))
	if _, err = io.ReadFull(r, block); err != nil {
		return nil, nil, nil, fmt.Errorf("megolm key derivation: %w", err)
	}
	return block[:aesKeySize], block[aesKeySize : aesKeySize+macKeySize], block[aesKeySize+macKeySize:], nil
}

// encryptCBC encrypts plaintext with AES-256-CBC and PKCS#7 padding.
func encryptCBC(aesKey, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return ct, nil
}

// decryptCBC reverses encryptCBC, failing on bad lengths or padding.
func decryptCBC(aesKey, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, domain.ErrDecryptionFailed
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded, aes.BlockSize)
}

// recordMAC computes the truncated HMAC-SHA-256 over the record context:
// session id, message index, ciphertext body.
func recordMAC(macKey, sessionID []byte, index uint32, body []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	h.Write(sessionID)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	h.Write(idx[:])
	h.Write(body)
	return h.Sum(nil)[:macSize]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, domain.ErrDecryptionFailed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, domain.ErrDecryptionFailed
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, domain.ErrDecryptionFailed
		}
	}
	return b[:len(b)-n], nil
}
