// Package olm implements the pairwise half of the armorcrypt core: the
// account (long-term identity plus a pool of one-time agreement keys) and
// the Double-Ratchet session it establishes with a peer.
//
// A session is created either outbound, by a triple Diffie–Hellman over the
// initiator's identity and ephemeral keys against the peer's identity and
// one-time keys, or inbound, from the handshake material bundled in the
// first (PreKey) message. Both sides derive the same session id from the
// handshake transcript without communicating. After the handshake each
// direction advances a symmetric HKDF chain one step per message; a chain
// key is zeroized the moment it is superseded, so a later compromise cannot
// decrypt earlier traffic.
//
// Sessions are not safe for concurrent mutation; the caller serializes
// Encrypt/Decrypt per session. Distinct sessions are independent.
package olm
