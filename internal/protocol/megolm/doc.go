// Package megolm implements the group half of the armorcrypt core: a
// forward-only symmetric ratchet shared by all recipients of a
// conversation, sender-authenticated with a per-session Ed25519 key.
//
// An outbound session owns the signing key and advances the chain once per
// encrypted message. Recipients build inbound sessions from an exported
// session key, a signed snapshot of the chain at its current position: they
// can ratchet forward to any later index but can never step back, which is
// what keeps messages sent before a member joined unreadable to them.
//
// The record cipher is the m.megolm.v1.aes-sha2 suite: AES-256-CBC with an
// HKDF-expanded key block and a truncated HMAC-SHA-256, with the sender
// signature over the whole record.
package megolm
