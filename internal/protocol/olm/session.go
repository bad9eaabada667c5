package olm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"armorcrypt/internal/crypto"
	"armorcrypt/internal/domain"
	"armorcrypt/internal/pickle"
	"armorcrypt/internal/util/memzero"
)

// Cap on retained out-of-order message keys per session.
const maxSkipped = 1000

// Session is one established pairwise Double-Ratchet session. Each direction
// owns a symmetric chain that only moves forward; the session never rewinds.
type Session struct {
	id           domain.SessionID
	peerIdentity domain.X25519Public

	rootKey   []byte
	sendChain []byte
	recvChain []byte
	sendIndex uint32
	recvIndex uint32

	// skipped holds message keys for indices that arrived out of order,
	// keyed by chain position.
	skipped map[uint32][]byte

	// pending carries the handshake header until the first message has
	// been sent; only that message is tagged PreKey.
	pending *domain.PreKeyPayload
}

// NewOutbound establishes a session as the initiator: a triple DH over our
// identity key, a fresh ephemeral key, and the peer's identity and one-time
// keys. The peer completes its half from the PreKey header of our first
// message and arrives at the same session id.
func NewOutbound(rng io.Reader, self domain.Identity, peerIdentity domain.X25519Public, oneTime domain.OneTimeKeyPublic) (*Session, error) {
	if len(oneTime.Key) != 32 {
		return nil, fmt.Errorf("%w: one-time key must be 32 bytes", domain.ErrHandshakeFailed)
	}
	var otkPub domain.X25519Public
	copy(otkPub[:], oneTime.Key)

	ephPriv, ephPub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32((*[32]byte)(&ephPriv))

	dh1, err := crypto.DH(self.AgreementPriv, otkPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	dh2, err := crypto.DH(ephPriv, peerIdentity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	dh3, err := crypto.DH(ephPriv, otkPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}

	s := newSession(dh1, dh2, dh3, self.AgreementPub, ephPub, otkPub, true)
	s.peerIdentity = peerIdentity
	s.pending = &domain.PreKeyPayload{
		IdentityKey:  self.AgreementPub.Slice(),
		EphemeralKey: ephPub.Slice(),
		OneTimeKeyID: oneTime.KeyID,
		OneTimeKey:   otkPub.Slice(),
	}
	return s, nil
}

// NewInbound completes the handshake from the header of a received PreKey
// message, using the private half of the one-time key the initiator chose.
func NewInbound(self domain.Identity, oneTimePriv domain.X25519Private, header *domain.PreKeyPayload) (*Session, error) {
	if len(header.IdentityKey) != 32 || len(header.EphemeralKey) != 32 || len(header.OneTimeKey) != 32 {
		return nil, fmt.Errorf("%w: malformed pre-key header", domain.ErrHandshakeFailed)
	}
	var peerIdentity, peerEph, otkPub domain.X25519Public
	copy(peerIdentity[:], header.IdentityKey)
	copy(peerEph[:], header.EphemeralKey)
	copy(otkPub[:], header.OneTimeKey)

	// Mirror of the initiator's three DH computations.
	dh1, err := crypto.DH(oneTimePriv, peerIdentity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	dh2, err := crypto.DH(self.AgreementPriv, peerEph)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	dh3, err := crypto.DH(oneTimePriv, peerEph)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}

	s := newSession(dh1, dh2, dh3, peerIdentity, peerEph, otkPub, false)
	s.peerIdentity = peerIdentity
	return s, nil
}

// newSession derives the shared state both sides agree on: session id from
// the handshake transcript, root key and the two directional chains.
func newSession(dh1, dh2, dh3 [32]byte, initiatorIdentity, initiatorEph, otkPub domain.X25519Public, initiator bool) *Session {
	secret := make([]byte, 0, 96)
	secret = append(secret, dh1[:]...)
	secret = append(secret, dh2[:]...)
	secret = append(secret, dh3[:]...)
	root, initiatorChain, responderChain := deriveSessionKeys(secret)
	memzero.Zero(secret)
	memzero.Zero32(&dh1)
	memzero.Zero32(&dh2)
	memzero.Zero32(&dh3)

	transcript := make([]byte, 0, 96)
	transcript = append(transcript, initiatorIdentity.Slice()...)
	transcript = append(transcript, initiatorEph.Slice()...)
	transcript = append(transcript, otkPub.Slice()...)
	sum := sha256.Sum256(transcript)

	s := &Session{
		id:      domain.SessionID(crypto.B64(sum[:])),
		rootKey: root,
		skipped: make(map[uint32][]byte),
	}
	if initiator {
		s.sendChain, s.recvChain = initiatorChain, responderChain
	} else {
		s.sendChain, s.recvChain = responderChain, initiatorChain
	}
	return s
}

// ID returns the session identifier shared by both sides.
func (s *Session) ID() domain.SessionID { return s.id }

// PeerIdentityKey returns the peer's long-term agreement public key.
func (s *Session) PeerIdentityKey() domain.X25519Public { return s.peerIdentity }

// Encrypt derives the next message key from the sending chain, seals
// plaintext, and advances the chain. The superseded chain key is destroyed
// in the process. The first message of an outbound session is tagged PreKey
// and carries the handshake header; everything after is Normal.
func (s *Session) Encrypt(plaintext []byte) (domain.PairwiseMessage, error) {
	var mk []byte
	s.sendChain, mk = advanceChain(s.sendChain)
	defer memzero.Zero(mk)

	index := s.sendIndex
	s.sendIndex++

	ct, err := seal(mk, s.id, index, plaintext)
	if err != nil {
		return domain.PairwiseMessage{}, err
	}
	inner := domain.NormalPayload{Index: index, Ciphertext: ct}

	if s.pending != nil {
		header := *s.pending
		header.Message = inner
		s.pending = nil
		body, err := json.Marshal(header)
		if err != nil {
			return domain.PairwiseMessage{}, err
		}
		return domain.PairwiseMessage{MessageType: domain.MessageTypePreKey, Body: body}, nil
	}

	body, err := json.Marshal(inner)
	if err != nil {
		return domain.PairwiseMessage{}, err
	}
	return domain.PairwiseMessage{MessageType: domain.MessageTypeNormal, Body: body}, nil
}

// Decrypt opens msg at the chain position it names. Out-of-order messages
// are handled by ratcheting the receiving chain forward and caching the
// skipped message keys; positions below the chain floor fail as replays.
// Receiving-side state only commits after the integrity check passes.
func (s *Session) Decrypt(msg domain.PairwiseMessage) ([]byte, error) {
	var inner domain.NormalPayload
	switch msg.MessageType {
	case domain.MessageTypePreKey:
		// Re-delivery of the handshake message to an established session:
		// only the embedded payload is still of interest.
		var header domain.PreKeyPayload
		if err := json.Unmarshal(msg.Body, &header); err != nil {
			return nil, domain.ErrDecryptionFailed
		}
		inner = header.Message
	case domain.MessageTypeNormal:
		if err := json.Unmarshal(msg.Body, &inner); err != nil {
			return nil, domain.ErrDecryptionFailed
		}
	default:
		return nil, domain.ErrDecryptionFailed
	}
	return s.decryptAt(inner)
}

func (s *Session) decryptAt(p domain.NormalPayload) ([]byte, error) {
	// A key cached for an out-of-order index is consumed exactly once.
	if mk, ok := s.skipped[p.Index]; ok {
		pt, err := open(mk, s.id, p.Index, p.Ciphertext)
		if err != nil {
			return nil, domain.ErrDecryptionFailed
		}
		memzero.Zero(mk)
		delete(s.skipped, p.Index)
		return pt, nil
	}
	if p.Index < s.recvIndex {
		// Chain already moved past this position and the key is gone.
		return nil, domain.ErrDecryptionFailed
	}

	// Work on a copy so a failed integrity check leaves state untouched.
	ck := append([]byte(nil), s.recvChain...)
	stash := make(map[uint32][]byte, p.Index-s.recvIndex)
	var mk []byte
	for i := s.recvIndex; i < p.Index; i++ {
		ck, mk = advanceChain(ck)
		stash[i] = mk
	}
	ck, mk = advanceChain(ck)

	pt, err := open(mk, s.id, p.Index, p.Ciphertext)
	if err != nil {
		memzero.Zero(mk)
		memzero.Zero(ck)
		for _, k := range stash {
			memzero.Zero(k)
		}
		return nil, domain.ErrDecryptionFailed
	}
	memzero.Zero(mk)

	// Commit.
	memzero.Zero(s.recvChain)
	s.recvChain = ck
	s.recvIndex = p.Index + 1
	for i, k := range stash {
		if len(s.skipped) >= maxSkipped {
			for old := range s.skipped {
				memzero.Zero(s.skipped[old])
				delete(s.skipped, old)
				break
			}
		}
		s.skipped[i] = k
	}
	return pt, nil
}

// Wipe zeroizes every secret the session still holds.
func (s *Session) Wipe() {
	memzero.Zero(s.rootKey)
	memzero.Zero(s.sendChain)
	memzero.Zero(s.recvChain)
	for i := range s.skipped {
		memzero.Zero(s.skipped[i])
		delete(s.skipped, i)
	}
}

// --- message AEAD ---

func seal(mk []byte, id domain.SessionID, index uint32, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint32(nonce[chacha20poly1305.NonceSize-4:], index)
	return aead.Seal(nil, nonce, plaintext, []byte(id)), nil
}

func open(mk []byte, id domain.SessionID, index uint32, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint32(nonce[chacha20poly1305.NonceSize-4:], index)
	return aead.Open(nil, nonce, ciphertext, []byte(id))
}

// --- persistence ---

// sessionState is the pickled form of a Session.
type sessionState struct {
	ID           string
	PeerIdentity []byte
	RootKey      []byte
	SendChain    []byte
	RecvChain    []byte
	SendIndex    uint32
	RecvIndex    uint32
	Skipped      map[uint32][]byte
	Pending      *pendingState
}

type pendingState struct {
	IdentityKey  []byte
	EphemeralKey []byte
	OneTimeKeyID string
	OneTimeKey   []byte
}

// Pickle snapshots the session into an encrypted blob. Unpickling it
// reconstructs byte-identical state.
func (s *Session) Pickle(key []byte) ([]byte, error) {
	st := sessionState{
		ID:           string(s.id),
		PeerIdentity: s.peerIdentity.Slice(),
		RootKey:      s.rootKey,
		SendChain:    s.sendChain,
		RecvChain:    s.recvChain,
		SendIndex:    s.sendIndex,
		RecvIndex:    s.recvIndex,
		Skipped:      s.skipped,
	}
	if s.pending != nil {
		st.Pending = &pendingState{
			IdentityKey:  s.pending.IdentityKey,
			EphemeralKey: s.pending.EphemeralKey,
			OneTimeKeyID: s.pending.OneTimeKeyID.String(),
			OneTimeKey:   s.pending.OneTimeKey,
		}
	}
	return pickle.Seal(key, &st)
}

// UnpickleSession reconstructs a session from a pickled blob.
func UnpickleSession(key, blob []byte) (*Session, error) {
	var st sessionState
	if err := pickle.Open(key, blob, &st); err != nil {
		return nil, err
	}
	s := &Session{
		id:        domain.SessionID(st.ID),
		rootKey:   st.RootKey,
		sendChain: st.SendChain,
		recvChain: st.RecvChain,
		sendIndex: st.SendIndex,
		recvIndex: st.RecvIndex,
		skipped:   st.Skipped,
	}
	if s.skipped == nil {
		s.skipped = make(map[uint32][]byte)
	}
	copy(s.peerIdentity[:], st.PeerIdentity)
	if st.Pending != nil {
		s.pending = &domain.PreKeyPayload{
			IdentityKey:  st.Pending.IdentityKey,
			EphemeralKey: st.Pending.EphemeralKey,
			OneTimeKeyID: domain.KeyID(st.Pending.OneTimeKeyID),
			OneTimeKey:   st.Pending.OneTimeKey,
		}
	}
	return s, nil
}
