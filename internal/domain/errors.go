package domain

import "errors"

var (
	// ErrKeyGeneration means the randomness source failed while producing
	// key material. Fatal to the calling operation; never retried here.
	ErrKeyGeneration = errors.New("armorcrypt: key generation failed")

	// ErrHandshakeFailed means peer key material was malformed (wrong
	// length or format) and no session could be established.
	ErrHandshakeFailed = errors.New("armorcrypt: handshake failed")

	// ErrSessionIDMismatch means a group message was addressed to a
	// different session than the one asked to decrypt it.
	ErrSessionIDMismatch = errors.New("armorcrypt: session id mismatch")

	// ErrMessageIndexTooOld means the chain state needed to decrypt the
	// message was already ratcheted past and discarded.
	ErrMessageIndexTooOld = errors.New("armorcrypt: message index too old")

	// ErrSignatureInvalid means a group record's sender signature did not
	// verify against the session's verification key.
	ErrSignatureInvalid = errors.New("armorcrypt: signature invalid")

	// ErrDecryptionFailed covers every integrity failure: bad key,
	// corrupted ciphertext, or replay. The causes are indistinguishable at
	// this layer on purpose.
	ErrDecryptionFailed = errors.New("armorcrypt: decryption failed")

	// ErrNotOutboundSession means an outbound-only operation (encrypt,
	// session-key export) was called on an inbound group session.
	ErrNotOutboundSession = errors.New("armorcrypt: not an outbound session")

	// ErrUnknownKeyID means no one-time key with the given id exists.
	ErrUnknownKeyID = errors.New("armorcrypt: unknown one-time key id")

	// ErrAlreadyConsumed means the one-time key was used before. At most
	// one session may ever be established per one-time key.
	ErrAlreadyConsumed = errors.New("armorcrypt: one-time key already consumed")

	// ErrSessionExportInvalid means an exported group session key could
	// not be parsed or its self-signature did not verify.
	ErrSessionExportInvalid = errors.New("armorcrypt: session export invalid")

	// ErrCorruptPickle means a persisted blob failed its integrity check.
	// No partially reconstructed state is ever returned.
	ErrCorruptPickle = errors.New("armorcrypt: corrupt pickle")
)
