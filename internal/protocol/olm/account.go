package olm

import (
	"encoding/binary"
	"fmt"
	"io"

	"armorcrypt/internal/crypto"
	"armorcrypt/internal/domain"
	"armorcrypt/internal/pickle"
	"armorcrypt/internal/util/memzero"
)

// Account owns one long-term identity and a pool of one-time agreement
// keys. The identity is generated once and immutable; one-time keys are
// appended in batches and each is consumed at most once.
//
// An Account is single-owner: the caller serializes mutating calls
// (GenerateOneTimeKeys, MarkConsumed, UseOneTimeKey) per account.
type Account struct {
	identity domain.Identity
	oneTime  map[domain.KeyID]*domain.OneTimeKey
	order    []domain.KeyID
	nextID   uint32
}

// NewAccount generates a fresh identity: an X25519 agreement pair and an
// Ed25519 signing pair, both read from rng.
func NewAccount(rng io.Reader) (*Account, error) {
	xpriv, xpub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return nil, err
	}
	edpriv, edpub, err := crypto.GenerateEd25519(rng)
	if err != nil {
		return nil, err
	}
	return &Account{
		identity: domain.Identity{
			AgreementPriv: xpriv,
			AgreementPub:  xpub,
			SigningPriv:   edpriv,
			SigningPub:    edpub,
		},
		oneTime: make(map[domain.KeyID]*domain.OneTimeKey),
		nextID:  1,
	}, nil
}

// Identity returns the account's full identity, private halves included.
// Callers must not retain the value past the operation that needs it.
func (a *Account) Identity() domain.Identity { return a.identity }

// IdentityKeys returns the public identity keys in their wire JSON view.
func (a *Account) IdentityKeys() domain.IdentityKeys {
	return domain.IdentityKeys{
		Curve25519: crypto.B64(a.identity.AgreementPub.Slice()),
		Ed25519:    crypto.B64(a.identity.SigningPub.Slice()),
	}
}

// Sign signs msg with the account's long-term Ed25519 key.
func (a *Account) Sign(msg []byte) []byte {
	return crypto.Sign(a.identity.SigningPriv, msg)
}

// GenerateOneTimeKeys appends count fresh unconsumed keys to the pool and
// returns only the newly generated public halves. No upper bound is
// enforced; key-supply policy belongs to the caller.
func (a *Account) GenerateOneTimeKeys(rng io.Reader, count uint) ([]domain.OneTimeKeyPublic, error) {
	out := make([]domain.OneTimeKeyPublic, 0, count)
	for i := uint(0); i < count; i++ {
		priv, pub, err := crypto.GenerateX25519(rng)
		if err != nil {
			return nil, err
		}
		id := a.newKeyID()
		a.oneTime[id] = &domain.OneTimeKey{ID: id, Priv: priv, Pub: pub}
		a.order = append(a.order, id)
		out = append(out, domain.OneTimeKeyPublic{KeyID: id, Key: pub.Slice()})
	}
	return out, nil
}

// OneTimeKeys returns the public halves of every unconsumed key, oldest
// first.
func (a *Account) OneTimeKeys() []domain.OneTimeKeyPublic {
	var out []domain.OneTimeKeyPublic
	for _, id := range a.order {
		k := a.oneTime[id]
		if k.Consumed {
			continue
		}
		out = append(out, domain.OneTimeKeyPublic{KeyID: id, Key: k.Pub.Slice()})
	}
	return out
}

// PeekOneTimeKey returns a copy of the key's private half without changing
// its state. Establishment paths read the key with this and commit with
// MarkConsumed only once the handshake has succeeded, so a failed envelope
// never burns the key.
func (a *Account) PeekOneTimeKey(id domain.KeyID) (domain.X25519Private, error) {
	k, ok := a.oneTime[id]
	if !ok {
		return domain.X25519Private{}, fmt.Errorf("%w: %q", domain.ErrUnknownKeyID, id)
	}
	if k.Consumed {
		return domain.X25519Private{}, fmt.Errorf("%w: %q", domain.ErrAlreadyConsumed, id)
	}
	return k.Priv, nil
}

// MarkConsumed transitions the key to consumed, exactly once, and destroys
// the pool's private half. The consumed marker stays so the id can never be
// re-issued.
func (a *Account) MarkConsumed(id domain.KeyID) error {
	k, ok := a.oneTime[id]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownKeyID, id)
	}
	if k.Consumed {
		return fmt.Errorf("%w: %q", domain.ErrAlreadyConsumed, id)
	}
	k.Consumed = true
	memzero.Zero32((*[32]byte)(&k.Priv))
	return nil
}

// UseOneTimeKey consumes the key and returns its private half: peek and
// commit in one call, for callers that establish immediately.
func (a *Account) UseOneTimeKey(id domain.KeyID) (domain.X25519Private, error) {
	priv, err := a.PeekOneTimeKey(id)
	if err != nil {
		return domain.X25519Private{}, err
	}
	if err := a.MarkConsumed(id); err != nil {
		return domain.X25519Private{}, err
	}
	return priv, nil
}

// Wipe zeroizes all private key material owned by the account.
func (a *Account) Wipe() {
	memzero.Zero32((*[32]byte)(&a.identity.AgreementPriv))
	memzero.Zero64((*[64]byte)(&a.identity.SigningPriv))
	for _, k := range a.oneTime {
		memzero.Zero32((*[32]byte)(&k.Priv))
	}
}

// newKeyID returns the next pool id: base64 of a big-endian counter, so ids
// are short, unique and ordered.
func (a *Account) newKeyID() domain.KeyID {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], a.nextID)
	a.nextID++
	return domain.KeyID(crypto.B64(b[:]))
}

// accountState is the pickled form of an Account.
type accountState struct {
	AgreementPriv []byte
	AgreementPub  []byte
	SigningPriv   []byte
	SigningPub    []byte
	OneTime       []oneTimeKeyState
	NextID        uint32
}

type oneTimeKeyState struct {
	ID       string
	Priv     []byte
	Pub      []byte
	Consumed bool
}

// Pickle snapshots the account into an encrypted blob.
func (a *Account) Pickle(key []byte) ([]byte, error) {
	st := accountState{
		AgreementPriv: a.identity.AgreementPriv.Slice(),
		AgreementPub:  a.identity.AgreementPub.Slice(),
		SigningPriv:   a.identity.SigningPriv.Slice(),
		SigningPub:    a.identity.SigningPub.Slice(),
		NextID:        a.nextID,
	}
	for _, id := range a.order {
		k := a.oneTime[id]
		st.OneTime = append(st.OneTime, oneTimeKeyState{
			ID:       id.String(),
			Priv:     k.Priv.Slice(),
			Pub:      k.Pub.Slice(),
			Consumed: k.Consumed,
		})
	}
	return pickle.Seal(key, &st)
}

// UnpickleAccount reconstructs an account from a pickled blob.
func UnpickleAccount(key, blob []byte) (*Account, error) {
	var st accountState
	if err := pickle.Open(key, blob, &st); err != nil {
		return nil, err
	}
	a := &Account{
		oneTime: make(map[domain.KeyID]*domain.OneTimeKey),
		nextID:  st.NextID,
	}
	copy(a.identity.AgreementPriv[:], st.AgreementPriv)
	copy(a.identity.AgreementPub[:], st.AgreementPub)
	copy(a.identity.SigningPriv[:], st.SigningPriv)
	copy(a.identity.SigningPub[:], st.SigningPub)
	for _, ks := range st.OneTime {
		k := &domain.OneTimeKey{ID: domain.KeyID(ks.ID), Consumed: ks.Consumed}
		copy(k.Priv[:], ks.Priv)
		copy(k.Pub[:], ks.Pub)
		a.oneTime[k.ID] = k
		a.order = append(a.order, k.ID)
	}
	return a, nil
}
