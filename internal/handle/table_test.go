package handle_test

import (
	"errors"
	"testing"

	"armorcrypt/internal/handle"
)

type wipeSpy struct {
	wiped bool
}

func (w *wipeSpy) Wipe() { w.wiped = true }

func TestTable_PutGetRelease(t *testing.T) {
	tab := handle.New[string]()

	h := tab.Put("value")
	got, err := tab.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Fatalf("got %q", got)
	}
	if tab.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tab.Len())
	}

	if err := tab.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := tab.Get(h); !errors.Is(err, handle.ErrStale) {
		t.Fatalf("Get after release = %v, want ErrStale", err)
	}
	if err := tab.Release(h); !errors.Is(err, handle.ErrStale) {
		t.Fatalf("double Release = %v, want ErrStale", err)
	}
}

func TestTable_ZeroHandleInvalid(t *testing.T) {
	tab := handle.New[int]()
	tab.Put(1)
	if _, err := tab.Get(handle.Handle{}); !errors.Is(err, handle.ErrStale) {
		t.Fatalf("zero handle Get = %v, want ErrStale", err)
	}
}

func TestTable_SlotReuseInvalidatesOldHandle(t *testing.T) {
	tab := handle.New[int]()
	h1 := tab.Put(1)
	if err := tab.Release(h1); err != nil {
		t.Fatalf("Release: %v", err)
	}

	h2 := tab.Put(2)
	if _, err := tab.Get(h1); !errors.Is(err, handle.ErrStale) {
		t.Fatalf("old handle still resolves after slot reuse")
	}
	got, err := tab.Get(h2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestTable_ReleaseWipes(t *testing.T) {
	tab := handle.New[*wipeSpy]()
	spy := &wipeSpy{}
	h := tab.Put(spy)
	if err := tab.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !spy.wiped {
		t.Fatal("Release did not wipe the value")
	}
}
