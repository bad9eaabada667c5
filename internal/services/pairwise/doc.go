// Package pairwise manages the Double-Ratchet sessions of one account:
// outbound establishment against a peer's published keys, inbound
// establishment from a received PreKey envelope (consuming the matching
// one-time key exactly once), and lookup by session id.
package pairwise
