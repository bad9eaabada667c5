package pickle_test

import (
	"bytes"
	"errors"
	"testing"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/pickle"
)

type sample struct {
	Name  string
	Seed  []byte
	Index uint32
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := []byte("pickle key")
	in := sample{Name: "s", Seed: []byte{1, 2, 3, 4}, Index: 42}

	blob, err := pickle.Seal(key, &in)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	var out sample
	if err := pickle.Open(key, blob, &out); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if out.Name != in.Name || out.Index != in.Index || !bytes.Equal(out.Seed, in.Seed) {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestSealOpen_EmptyKey(t *testing.T) {
	in := sample{Name: "unencrypted mode", Index: 7}
	blob, err := pickle.Seal(nil, &in)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	var out sample
	if err := pickle.Open(nil, blob, &out); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if out.Index != 7 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Even with an empty key the blob stays tamper-evident.
	blob[len(blob)-1] ^= 0xff
	if err := pickle.Open(nil, blob, &out); !errors.Is(err, domain.ErrCorruptPickle) {
		t.Fatalf("Open tampered = %v, want ErrCorruptPickle", err)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	blob, err := pickle.Seal([]byte("right"), &sample{Name: "x"})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	var out sample
	if err := pickle.Open([]byte("wrong"), blob, &out); !errors.Is(err, domain.ErrCorruptPickle) {
		t.Fatalf("Open = %v, want ErrCorruptPickle", err)
	}
}

func TestOpen_Truncated(t *testing.T) {
	blob, err := pickle.Seal([]byte("k"), &sample{Name: "x"})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	var out sample
	for _, n := range []int{0, 1, 10, len(blob) - 1} {
		if err := pickle.Open([]byte("k"), blob[:n], &out); !errors.Is(err, domain.ErrCorruptPickle) {
			t.Fatalf("Open truncated to %d = %v, want ErrCorruptPickle", n, err)
		}
	}
}

func TestOpen_UnknownVersion(t *testing.T) {
	blob, err := pickle.Seal([]byte("k"), &sample{Name: "x"})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	blob[0] = 0x7f
	var out sample
	if err := pickle.Open([]byte("k"), blob, &out); !errors.Is(err, domain.ErrCorruptPickle) {
		t.Fatalf("Open = %v, want ErrCorruptPickle", err)
	}
}
