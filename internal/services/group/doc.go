// Package group manages Megolm ratchet sessions: outbound creation per
// conversation epoch, session-key export for sharing over a pairwise
// channel, inbound import, and lookup by session id.
package group
