package olm_test

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"testing"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/protocol/olm"
)

// establishPair runs the handshake end to end: bob opens an outbound
// session against one of alice's one-time keys, sends firstMsg, and alice
// derives her inbound session from the PreKey envelope.
func establishPair(t *testing.T, firstPlaintext string) (bobSession, aliceSession *olm.Session, firstMsg domain.PairwiseMessage) {
	t.Helper()
	alice := makeAccount(t)
	bob := makeAccount(t)

	otks, err := alice.GenerateOneTimeKeys(rand.Reader, 1)
	if err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}

	bobSession, err = olm.NewOutbound(rand.Reader, bob.Identity(), alice.Identity().AgreementPub, otks[0])
	if err != nil {
		t.Fatalf("NewOutbound: %v", err)
	}

	firstMsg, err = bobSession.Encrypt([]byte(firstPlaintext))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if firstMsg.MessageType != domain.MessageTypePreKey {
		t.Fatalf("first message type = %d, want PreKey", firstMsg.MessageType)
	}

	var header domain.PreKeyPayload
	if err := json.Unmarshal(firstMsg.Body, &header); err != nil {
		t.Fatalf("unmarshal pre-key header: %v", err)
	}
	otkPriv, err := alice.UseOneTimeKey(header.OneTimeKeyID)
	if err != nil {
		t.Fatalf("UseOneTimeKey: %v", err)
	}
	aliceSession, err = olm.NewInbound(alice.Identity(), otkPriv, &header)
	if err != nil {
		t.Fatalf("NewInbound: %v", err)
	}
	return bobSession, aliceSession, firstMsg
}

func TestPairwise_HelloScenario(t *testing.T) {
	bobSession, aliceSession, hello := establishPair(t, "hello")

	// Both sides converge on the same session id without communicating it.
	if bobSession.ID() != aliceSession.ID() {
		t.Fatalf("session ids differ: %s vs %s", bobSession.ID(), aliceSession.ID())
	}

	pt, err := aliceSession.Decrypt(hello)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "hello" {
		t.Fatalf("got %q, want %q", pt, "hello")
	}

	reply, err := aliceSession.Encrypt([]byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt reply: %v", err)
	}
	if reply.MessageType != domain.MessageTypeNormal {
		t.Fatalf("reply type = %d, want Normal", reply.MessageType)
	}
	pt, err = bobSession.Decrypt(reply)
	if err != nil {
		t.Fatalf("Decrypt reply: %v", err)
	}
	if string(pt) != "hi" {
		t.Fatalf("got %q, want %q", pt, "hi")
	}
}

func TestPairwise_SecondMessageIsNormal(t *testing.T) {
	bobSession, aliceSession, first := establishPair(t, "one")
	if _, err := aliceSession.Decrypt(first); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	second, err := bobSession.Encrypt([]byte("two"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if second.MessageType != domain.MessageTypeNormal {
		t.Fatalf("second message type = %d, want Normal", second.MessageType)
	}
	pt, err := aliceSession.Decrypt(second)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "two" {
		t.Fatalf("got %q, want %q", pt, "two")
	}
}

func TestPairwise_OutOfOrderDelivery(t *testing.T) {
	bobSession, aliceSession, m0 := establishPair(t, "m0")
	m1, err := bobSession.Encrypt([]byte("m1"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	m2, err := bobSession.Encrypt([]byte("m2"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for _, tc := range []struct {
		msg  domain.PairwiseMessage
		want string
	}{{m0, "m0"}, {m2, "m2"}, {m1, "m1"}} {
		pt, err := aliceSession.Decrypt(tc.msg)
		if err != nil {
			t.Fatalf("Decrypt %s: %v", tc.want, err)
		}
		if string(pt) != tc.want {
			t.Fatalf("got %q, want %q", pt, tc.want)
		}
	}
}

func TestPairwise_ReplayFails(t *testing.T) {
	bobSession, aliceSession, first := establishPair(t, "once")
	if _, err := aliceSession.Decrypt(first); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	msg, err := bobSession.Encrypt([]byte("again"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := aliceSession.Decrypt(msg); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if _, err := aliceSession.Decrypt(msg); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("replay = %v, want ErrDecryptionFailed", err)
	}
}

func TestPairwise_TamperedCiphertextFails(t *testing.T) {
	bobSession, aliceSession, first := establishPair(t, "seed")
	if _, err := aliceSession.Decrypt(first); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	msg, err := bobSession.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	var inner domain.NormalPayload
	if err := json.Unmarshal(msg.Body, &inner); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	inner.Ciphertext[0] ^= 0xff
	body, err := json.Marshal(inner)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg.Body = body

	if _, err := aliceSession.Decrypt(msg); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("tampered decrypt = %v, want ErrDecryptionFailed", err)
	}

	// A failed check must not advance state: the untampered message at the
	// same position still decrypts.
	clean, err := bobSession.Encrypt([]byte("clean"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := aliceSession.Decrypt(clean); err != nil {
		t.Fatalf("decrypt after failed attempt: %v", err)
	}
}

func TestPairwise_MalformedKeysFailHandshake(t *testing.T) {
	bob := makeAccount(t)
	alice := makeAccount(t)
	_, err := olm.NewOutbound(rand.Reader, bob.Identity(), alice.Identity().AgreementPub,
		domain.OneTimeKeyPublic{KeyID: "x", Key: []byte("short")})
	if !errors.Is(err, domain.ErrHandshakeFailed) {
		t.Fatalf("NewOutbound = %v, want ErrHandshakeFailed", err)
	}
}

func TestPairwise_PickleRoundTrip(t *testing.T) {
	bobSession, aliceSession, first := establishPair(t, "pre")
	if _, err := aliceSession.Decrypt(first); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	key := []byte("session pickle key")
	blob, err := aliceSession.Pickle(key)
	if err != nil {
		t.Fatalf("Pickle: %v", err)
	}
	restored, err := olm.UnpickleSession(key, blob)
	if err != nil {
		t.Fatalf("UnpickleSession: %v", err)
	}
	if restored.ID() != aliceSession.ID() {
		t.Fatalf("session id changed: %s vs %s", restored.ID(), aliceSession.ID())
	}

	// The restored session must be indistinguishable from the original:
	// same next receiving key, same next sending key.
	msg, err := bobSession.Encrypt([]byte("to restored"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := restored.Decrypt(msg)
	if err != nil {
		t.Fatalf("Decrypt on restored: %v", err)
	}
	if string(pt) != "to restored" {
		t.Fatalf("got %q, want %q", pt, "to restored")
	}

	reply, err := restored.Encrypt([]byte("from restored"))
	if err != nil {
		t.Fatalf("Encrypt on restored: %v", err)
	}
	pt, err = bobSession.Decrypt(reply)
	if err != nil {
		t.Fatalf("Decrypt reply: %v", err)
	}
	if string(pt) != "from restored" {
		t.Fatalf("got %q, want %q", pt, "from restored")
	}
}

func TestPairwise_UnpickleWrongKey(t *testing.T) {
	_, aliceSession, _ := establishPair(t, "x")
	blob, err := aliceSession.Pickle([]byte("right"))
	if err != nil {
		t.Fatalf("Pickle: %v", err)
	}
	if _, err := olm.UnpickleSession([]byte("wrong"), blob); !errors.Is(err, domain.ErrCorruptPickle) {
		t.Fatalf("UnpickleSession = %v, want ErrCorruptPickle", err)
	}
}
