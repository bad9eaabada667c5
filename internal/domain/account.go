package domain

// Identity holds an account's long-term X25519 agreement and Ed25519 signing
// key pairs. Created once per account and immutable thereafter; the private
// halves never cross the process boundary unencrypted.
type Identity struct {
	AgreementPriv X25519Private
	AgreementPub  X25519Public
	SigningPriv   Ed25519Private
	SigningPub    Ed25519Public
}

// IdentityKeys is the public JSON view of an identity, base64 values.
type IdentityKeys struct {
	Curve25519 string `json:"curve25519"`
	Ed25519    string `json:"ed25519"`
}

// OneTimeKey is a single-use agreement key pair in an account's pool. It
// transitions unconsumed to consumed exactly once, on first successful use
// in session establishment.
type OneTimeKey struct {
	ID       KeyID
	Priv     X25519Private
	Pub      X25519Public
	Consumed bool
}

// OneTimeKeyPublic is the published half of a one-time key.
type OneTimeKeyPublic struct {
	KeyID KeyID  `json:"key_id"`
	Key   []byte `json:"key"`
}
