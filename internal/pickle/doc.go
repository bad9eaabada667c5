// Package pickle serializes session and account state into opaque encrypted
// blobs for at-rest persistence.
//
// State is CBOR-encoded, then sealed with ChaCha20-Poly1305 under a key
// derived from the caller's pickle key via HKDF-SHA256 with a per-blob
// random salt. An empty pickle key is legal and represents "unencrypted"
// storage: the blob is still integrity-protected, but the caller is
// responsible for guarding it at rest. Opening a blob whose tag fails
// returns domain.ErrCorruptPickle; no partially reconstructed state is
// ever handed back.
package pickle
