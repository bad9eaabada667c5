package domain

// X25519Public is a Curve25519 agreement public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 agreement private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key (seed plus public half).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// KeyID identifies a one-time key within an account's pool.
type KeyID string

// String returns the string form of the identifier.
func (id KeyID) String() string { return string(id) }

// SessionID identifies a pairwise or group session. Both ends of a
// conversation derive the same value without communicating.
type SessionID string

// String returns the string form of the identifier.
func (id SessionID) String() string { return string(id) }
