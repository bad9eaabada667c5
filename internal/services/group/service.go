package group

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/protocol/megolm"
)

var errUnknownSession = errors.New("group: unknown session id")

// Manager creates and looks up group ratchet sessions. The lookup table is
// mutex-guarded; mutation of an individual session is caller-serialized.
type Manager struct {
	rng       io.Reader
	senderKey string

	mu       sync.Mutex
	sessions map[domain.SessionID]*megolm.Session
}

// NewManager returns a manager stamping senderKey (the owning account's
// agreement public key in wire form) onto every outbound message.
func NewManager(rng io.Reader, senderKey string) *Manager {
	return &Manager{
		rng:       rng,
		senderKey: senderKey,
		sessions:  make(map[domain.SessionID]*megolm.Session),
	}
}

// CreateOutbound starts a fresh outbound ratchet for a new conversation
// epoch and returns its id.
func (m *Manager) CreateOutbound() (domain.SessionID, error) {
	s, err := megolm.NewOutbound(m.rng, m.senderKey)
	if err != nil {
		return "", err
	}
	m.put(s)
	return s.ID(), nil
}

// ExportSessionKey snapshots the outbound session at its current ratchet
// position. Fails with ErrNotOutboundSession for inbound sessions.
func (m *Manager) ExportSessionKey(id domain.SessionID) (string, error) {
	s, ok := m.Session(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownSession, id)
	}
	return s.SessionKey()
}

// CreateInbound builds a receiving ratchet from an exported session key and
// returns its id.
func (m *Manager) CreateInbound(exported string) (domain.SessionID, error) {
	s, err := megolm.NewInbound(exported)
	if err != nil {
		return "", err
	}
	m.put(s)
	return s.ID(), nil
}

// Session returns the session with the given id, if known.
func (m *Manager) Session(id domain.SessionID) (*megolm.Session, bool) {
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

func (m *Manager) put(s *megolm.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

// Compile-time assertion that Manager implements domain.GroupSessions.
var _ domain.GroupSessions = (*Manager)(nil)
