// Package crypto exposes the primitives the armorcrypt core builds on.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     Sign, Verify)
//   - CSPRNG access (RandRead)
//   - Short public-key fingerprints for display (Fingerprint)
//   - Standard base64 helpers for wire strings (B64, B64Decode)
//
// # Notes
//
// Key-producing functions take the randomness source as an explicit
// io.Reader so callers supply the capability instead of this package owning
// global state. All functions return the fixed-size array types defined in
// internal/domain. Verify fails closed: malformed input is a verification
// failure, never a panic past the caller.
package crypto
