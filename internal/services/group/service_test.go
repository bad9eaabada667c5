package group_test

import (
	"crypto/rand"
	"testing"

	"armorcrypt/internal/services/group"
)

func TestManager_Lifecycle(t *testing.T) {
	sender := group.NewManager(rand.Reader, "sender-key")
	receiver := group.NewManager(rand.Reader, "receiver-key")

	id, err := sender.CreateOutbound()
	if err != nil {
		t.Fatalf("CreateOutbound: %v", err)
	}
	out, ok := sender.Session(id)
	if !ok {
		t.Fatal("outbound session not registered")
	}

	msg, err := out.Encrypt([]byte("group hello"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	exported, err := sender.ExportSessionKey(id)
	if err != nil {
		t.Fatalf("ExportSessionKey: %v", err)
	}
	inID, err := receiver.CreateInbound(exported)
	if err != nil {
		t.Fatalf("CreateInbound: %v", err)
	}
	if inID != id {
		t.Fatalf("inbound id %q, want %q", inID, id)
	}

	// Export was taken after the first send, so that message is out of
	// reach; only later ones decrypt.
	in, _ := receiver.Session(inID)
	if _, err := in.Decrypt(msg); err == nil {
		t.Fatal("pre-export message decrypted")
	}
	later, err := out.Encrypt([]byte("after export"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := in.Decrypt(later)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "after export" {
		t.Fatalf("got %q, want %q", pt, "after export")
	}
}

func TestManager_ExportUnknownSession(t *testing.T) {
	m := group.NewManager(rand.Reader, "sender-key")
	if _, err := m.ExportSessionKey("missing"); err == nil {
		t.Fatal("expected error for unknown session id")
	}
}
