package olm

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"armorcrypt/internal/util/memzero"
)

// KDF labels. Changing either breaks compatibility with existing sessions.
const (
	rootInfo  = "ARMOR_OLM_ROOT"
	chainInfo = "ARMOR_OLM_CHAIN"
)

const keySize = 32

// deriveSessionKeys expands the concatenated triple-DH secret into the root
// key and the two directional chain keys. The initiator sends on
// initiatorChain; the responder sends on responderChain.
func deriveSessionKeys(secret []byte) (root, initiatorChain, responderChain []byte) {
	r := hkdf.New(sha256.New, secret, nil, []byte(rootInfo))
	root = make([]byte, keySize)
	initiatorChain = make([]byte, keySize)
	responderChain = make([]byte, keySize)
	_, _ = io.ReadFull(r, root)
	_, _ = io.ReadFull(r, initiatorChain)
	_, _ = io.ReadFull(r, responderChain)
	return
}

// advanceChain derives the message key at the current chain position and the
// next chain key. The input chain key is zeroized: once a chain has moved
// forward there is no way back.
func advanceChain(ck []byte) (next, mk []byte) {
	r := hkdf.New(sha256.New, ck, nil, []byte(chainInfo))
	next = make([]byte, keySize)
	mk = make([]byte, keySize)
	_, _ = io.ReadFull(r, next)
	_, _ = io.ReadFull(r, mk)
	memzero.Zero(ck)
	return
}
