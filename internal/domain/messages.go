package domain

// Pairwise message types. The integer values are part of the wire contract.
const (
	MessageTypePreKey = 0
	MessageTypeNormal = 1
)

// AlgorithmMegolmV1 is the group cipher-suite identifier carried by every
// group message. Interoperating clients match on it byte-for-byte.
const AlgorithmMegolmV1 = "m.megolm.v1.aes-sha2"

// PairwiseMessage is the 1:1 wire envelope. Body is a JSON payload: a
// NormalPayload for MessageTypeNormal, a PreKeyPayload for MessageTypePreKey.
type PairwiseMessage struct {
	MessageType int    `json:"message_type"`
	Body        []byte `json:"body"`
}

// NormalPayload carries one ratchet ciphertext at a chain position.
type NormalPayload struct {
	Index      uint32 `json:"index"`
	Ciphertext []byte `json:"ciphertext"`
}

// PreKeyPayload bundles the handshake material the responder needs to derive
// the session, together with the first message of the sending chain.
type PreKeyPayload struct {
	IdentityKey  []byte        `json:"identity_key"`
	EphemeralKey []byte        `json:"ephemeral_key"`
	OneTimeKeyID KeyID         `json:"one_time_key_id"`
	OneTimeKey   []byte        `json:"one_time_key"`
	Message      NormalPayload `json:"message"`
}

// GroupMessage is the group wire envelope. Field names are part of the wire
// contract. Ciphertext packs the AES-CBC body, the truncated record MAC and
// the sender's Ed25519 signature; see internal/protocol/megolm.
type GroupMessage struct {
	Algorithm    string    `json:"algorithm"`
	SenderKey    string    `json:"sender_key"`
	SessionID    SessionID `json:"session_id"`
	Ciphertext   []byte    `json:"ciphertext"`
	MessageIndex uint32    `json:"message_index"`
}
