package megolm

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"armorcrypt/internal/crypto"
	"armorcrypt/internal/domain"
	"armorcrypt/internal/pickle"
	"armorcrypt/internal/util/memzero"
)

// Role distinguishes the sending end of a group ratchet from a receiving
// one built out of an exported session key.
type Role uint8

const (
	RoleOutbound Role = iota
	RoleInbound
)

// Exported session key layout: version, big-endian index, session id hash,
// chain, Ed25519 public key, self-signature over everything before it.
const (
	exportVersion = 0x01
	exportPayload = 1 + 4 + 32 + 32 + 32
	exportSize    = exportPayload + ed25519.SignatureSize
)

// Session is one Megolm ratchet. Outbound sessions hold the signing key and
// advance on every Encrypt; inbound sessions hold only the verification key
// and advance forward on Decrypt, never back.
type Session struct {
	id        [32]byte
	role      Role
	senderKey string

	chain [32]byte
	index uint32

	signingPriv domain.Ed25519Private // outbound only
	signingPub  domain.Ed25519Public
}

// NewOutbound creates a fresh outbound ratchet for a conversation epoch:
// a random seed and a per-session signing key pair, index starting at 0.
// senderKey is the owning account's agreement public key in its wire form.
func NewOutbound(rng io.Reader, senderKey string) (*Session, error) {
	var seed [32]byte
	if err := crypto.RandRead(rng, seed[:]); err != nil {
		return nil, err
	}
	signPriv, signPub, err := crypto.GenerateEd25519(rng)
	if err != nil {
		return nil, err
	}
	s := &Session{
		role:        RoleOutbound,
		senderKey:   senderKey,
		chain:       seed,
		signingPriv: signPriv,
		signingPub:  signPub,
	}
	s.id = sessionIDHash(seed, signPub)
	return s, nil
}

// sessionIDHash derives the session id from the initial ratchet seed and
// the session's verification key.
func sessionIDHash(seed [32]byte, signPub domain.Ed25519Public) [32]byte {
	h := sha256.New()
	h.Write(seed[:])
	h.Write(signPub.Slice())
	var id [32]byte
	copy(id[:], h.Sum(nil))
	return id
}

// ID returns the session identifier.
func (s *Session) ID() domain.SessionID { return domain.SessionID(crypto.B64(s.id[:])) }

// Index returns the current ratchet index: the index the next outbound
// message will carry, or the earliest index an inbound session can decrypt.
func (s *Session) Index() uint32 { return s.index }

// Role returns whether the session is outbound or inbound.
func (s *Session) Role() Role { return s.role }

// SessionKey exports the ratchet at its current position for sharing over a
// pairwise channel. The snapshot is self-signed; recipients can decrypt
// this and all later messages but nothing earlier, and the export cannot be
// rewound.
func (s *Session) SessionKey() (string, error) {
	if s.role != RoleOutbound {
		return "", domain.ErrNotOutboundSession
	}
	payload := make([]byte, 0, exportSize)
	payload = append(payload, exportVersion)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], s.index)
	payload = append(payload, idx[:]...)
	payload = append(payload, s.id[:]...)
	payload = append(payload, s.chain[:]...)
	payload = append(payload, s.signingPub.Slice()...)
	payload = append(payload, crypto.Sign(s.signingPriv, payload)...)
	return crypto.B64(payload), nil
}

// NewInbound reconstructs a receiving ratchet from an exported session key.
func NewInbound(exported string) (*Session, error) {
	raw, err := crypto.B64Decode(exported)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionExportInvalid, err)
	}
	if len(raw) != exportSize || raw[0] != exportVersion {
		return nil, domain.ErrSessionExportInvalid
	}
	s := &Session{role: RoleInbound}
	s.index = binary.BigEndian.Uint32(raw[1:5])
	copy(s.id[:], raw[5:37])
	copy(s.chain[:], raw[37:69])
	copy(s.signingPub[:], raw[69:exportPayload])
	if !crypto.Verify(s.signingPub, raw[:exportPayload], raw[exportPayload:]) {
		return nil, domain.ErrSessionExportInvalid
	}
	return s, nil
}

// Encrypt seals plaintext at the current ratchet position, signs the
// record, then advances the chain one-way. The returned message carries the
// pre-advance index.
func (s *Session) Encrypt(plaintext []byte) (domain.GroupMessage, error) {
	if s.role != RoleOutbound {
		return domain.GroupMessage{}, domain.ErrNotOutboundSession
	}
	aesKey, macKey, iv, err := messageKeys(s.chain)
	if err != nil {
		return domain.GroupMessage{}, err
	}
	defer memzero.Zero(aesKey)
	defer memzero.Zero(macKey)

	body, err := encryptCBC(aesKey, iv, plaintext)
	if err != nil {
		return domain.GroupMessage{}, err
	}
	index := s.index
	mac := recordMAC(macKey, s.id[:], index, body)

	record := make([]byte, 0, len(body)+macSize+ed25519.SignatureSize)
	record = append(record, body...)
	record = append(record, mac...)
	record = append(record, crypto.Sign(s.signingPriv, record)...)

	prev := s.chain
	s.chain = advance(s.chain)
	memzero.Zero32(&prev)
	s.index++

	return domain.GroupMessage{
		Algorithm:    domain.AlgorithmMegolmV1,
		SenderKey:    s.senderKey,
		SessionID:    s.ID(),
		Ciphertext:   record,
		MessageIndex: index,
	}, nil
}

// Decrypt opens msg if its index is at or after the session's current
// position, ratcheting a copy of the chain forward as needed. State commits
// only after signature, MAC and padding all check out, and the committed
// floor is the message's own index, so re-decrypting the same index with
// the same stored state succeeds without re-advancing.
func (s *Session) Decrypt(msg domain.GroupMessage) ([]byte, error) {
	if msg.Algorithm != domain.AlgorithmMegolmV1 {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", domain.ErrDecryptionFailed, msg.Algorithm)
	}
	if msg.SessionID != s.ID() {
		return nil, domain.ErrSessionIDMismatch
	}
	if msg.MessageIndex < s.index {
		return nil, domain.ErrMessageIndexTooOld
	}
	if len(msg.Ciphertext) < ivSize+macSize+ed25519.SignatureSize {
		return nil, domain.ErrDecryptionFailed
	}

	record := msg.Ciphertext
	sig := record[len(record)-ed25519.SignatureSize:]
	signed := record[:len(record)-ed25519.SignatureSize]
	if !crypto.Verify(s.signingPub, signed, sig) {
		return nil, domain.ErrSignatureInvalid
	}
	body := signed[:len(signed)-macSize]
	mac := signed[len(signed)-macSize:]

	chain := advanceTo(s.chain, s.index, msg.MessageIndex)
	aesKey, macKey, iv, err := messageKeys(chain)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(aesKey)
	defer memzero.Zero(macKey)

	if !hmac.Equal(mac, recordMAC(macKey, s.id[:], msg.MessageIndex, body)) {
		memzero.Zero32(&chain)
		return nil, domain.ErrDecryptionFailed
	}
	plaintext, err := decryptCBC(aesKey, iv, body)
	if err != nil {
		memzero.Zero32(&chain)
		return nil, domain.ErrDecryptionFailed
	}

	// Commit: the chain state for every index below msg.MessageIndex is
	// discarded for good.
	s.chain = chain
	s.index = msg.MessageIndex
	return plaintext, nil
}

// Wipe zeroizes the chain and any signing key material.
func (s *Session) Wipe() {
	memzero.Zero32(&s.chain)
	memzero.Zero64((*[64]byte)(&s.signingPriv))
}

// --- persistence ---

// groupState is the pickled form of a Session.
type groupState struct {
	ID          []byte
	Role        uint8
	SenderKey   string
	Chain       []byte
	Index       uint32
	SigningPriv []byte
	SigningPub  []byte
}

// Pickle snapshots the session into an encrypted blob.
func (s *Session) Pickle(key []byte) ([]byte, error) {
	st := groupState{
		ID:          s.id[:],
		Role:        uint8(s.role),
		SenderKey:   s.senderKey,
		Chain:       s.chain[:],
		Index:       s.index,
		SigningPriv: s.signingPriv.Slice(),
		SigningPub:  s.signingPub.Slice(),
	}
	return pickle.Seal(key, &st)
}

// Unpickle reconstructs a session from a pickled blob.
func Unpickle(key, blob []byte) (*Session, error) {
	var st groupState
	if err := pickle.Open(key, blob, &st); err != nil {
		return nil, err
	}
	s := &Session{
		role:      Role(st.Role),
		senderKey: st.SenderKey,
		index:     st.Index,
	}
	copy(s.id[:], st.ID)
	copy(s.chain[:], st.Chain)
	copy(s.signingPriv[:], st.SigningPriv)
	copy(s.signingPub[:], st.SigningPub)
	return s, nil
}
