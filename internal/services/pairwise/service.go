package pairwise

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/protocol/olm"
	"armorcrypt/internal/util/memzero"
)

// Manager creates and looks up pairwise sessions for a single account.
//
// The lookup table is guarded by a mutex so distinct sessions can be
// created and fetched concurrently. Mutation of an individual session
// (Encrypt/Decrypt) remains the caller's to serialize.
type Manager struct {
	rng     io.Reader
	account *olm.Account

	mu       sync.Mutex
	sessions map[domain.SessionID]*olm.Session
}

// NewManager wraps account with an empty session table.
func NewManager(rng io.Reader, account *olm.Account) *Manager {
	return &Manager{
		rng:      rng,
		account:  account,
		sessions: make(map[domain.SessionID]*olm.Session),
	}
}

// Account returns the owning account.
func (m *Manager) Account() *olm.Account { return m.account }

// CreateOutbound establishes a session with a peer from its identity key
// and one of its published one-time keys. Malformed key material fails with
// ErrHandshakeFailed.
func (m *Manager) CreateOutbound(peerIdentityKey []byte, oneTime domain.OneTimeKeyPublic) (domain.SessionID, error) {
	if len(peerIdentityKey) != 32 {
		return "", fmt.Errorf("%w: peer identity key must be 32 bytes", domain.ErrHandshakeFailed)
	}
	var peer domain.X25519Public
	copy(peer[:], peerIdentityKey)

	s, err := olm.NewOutbound(m.rng, m.account.Identity(), peer, oneTime)
	if err != nil {
		return "", err
	}
	m.put(s)
	return s.ID(), nil
}

// CreateInbound completes the handshake bundled in a PreKey envelope.
// Returns the new session's id and the plaintext of the embedded first
// message. The referenced one-time key is consumed only once the whole
// establishment has succeeded: a corrupted envelope leaves the key intact
// for the initiator's retry, while a second valid envelope naming the same
// key fails, so at most one session is ever established per one-time key.
func (m *Manager) CreateInbound(msg domain.PairwiseMessage) (domain.SessionID, []byte, error) {
	if msg.MessageType != domain.MessageTypePreKey {
		return "", nil, fmt.Errorf("%w: not a pre-key message", domain.ErrHandshakeFailed)
	}
	var header domain.PreKeyPayload
	if err := json.Unmarshal(msg.Body, &header); err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}

	otkPriv, err := m.account.PeekOneTimeKey(header.OneTimeKeyID)
	if err != nil {
		return "", nil, err
	}
	defer memzero.Zero32((*[32]byte)(&otkPriv))

	s, err := olm.NewInbound(m.account.Identity(), otkPriv, &header)
	if err != nil {
		return "", nil, err
	}
	plaintext, err := s.Decrypt(msg)
	if err != nil {
		s.Wipe()
		return "", nil, err
	}
	if err := m.account.MarkConsumed(header.OneTimeKeyID); err != nil {
		s.Wipe()
		return "", nil, err
	}
	m.put(s)
	return s.ID(), plaintext, nil
}

// Session returns the session with the given id, if known.
func (m *Manager) Session(id domain.SessionID) (*olm.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Sessions lists the ids of all known sessions.
func (m *Manager) Sessions() []domain.SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

func (m *Manager) put(s *olm.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

// Compile-time assertion that Manager implements domain.PairwiseSessions.
var _ domain.PairwiseSessions = (*Manager)(nil)
