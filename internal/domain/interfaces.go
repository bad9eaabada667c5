package domain

// PairwiseSessions creates and looks up pairwise ratchet sessions for one
// account. Mutating an individual session stays caller-serialized; the
// manager only guards its own lookup table.
type PairwiseSessions interface {
	CreateOutbound(peerIdentityKey []byte, oneTime OneTimeKeyPublic) (SessionID, error)
	// CreateInbound completes the handshake from a PreKey envelope and
	// returns the new session's id along with the first plaintext.
	CreateInbound(msg PairwiseMessage) (SessionID, []byte, error)
}

// GroupSessions creates and looks up group ratchet sessions and handles
// session-key export/import.
type GroupSessions interface {
	CreateOutbound() (SessionID, error)
	ExportSessionKey(id SessionID) (string, error)
	CreateInbound(exported string) (SessionID, error)
}

// PickleStore persists pickled state under a name, protected by a
// caller-supplied passphrase. Implementations own the at-rest format; the
// pickles themselves are already integrity-protected.
type PickleStore interface {
	Save(name, passphrase string, pickle []byte) error
	// Load reports ok=false when nothing is stored under name.
	Load(name, passphrase string) (pickle []byte, ok bool, err error)
}
