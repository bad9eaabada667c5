// Package handle gives an embedding binding layer opaque, generation-checked
// references to core objects. It replaces raw boxed pointers at the process
// boundary: a released or recycled slot can never be dereferenced again.
package handle

import (
	"errors"
	"sync"
)

// ErrStale means the handle was released, double-released, or never issued.
var ErrStale = errors.New("handle: stale or unknown handle")

// Wiper is implemented by values that must zeroize their secrets before the
// slot holding them is recycled.
type Wiper interface {
	Wipe()
}

// Handle references one slot in a Table. The zero Handle is never valid.
type Handle struct {
	index int
	gen   uint32
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Table is an arena of slots with generation counters. Safe for concurrent
// use; the values it stores follow their own concurrency contracts.
type Table[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []int
}

// New returns an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{}
}

// Put stores v and returns its handle.
func (t *Table[T]) Put(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.free); n > 0 {
		i := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[i].live = true
		t.slots[i].value = v
		return Handle{index: i, gen: t.slots[i].gen}
	}
	// Generations start at 1 so the zero Handle stays invalid.
	t.slots = append(t.slots, slot[T]{gen: 1, live: true, value: v})
	return Handle{index: len(t.slots) - 1, gen: 1}
}

// Get returns the value h refers to, or ErrStale.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if !t.valid(h) {
		return zero, ErrStale
	}
	return t.slots[h.index].value, nil
}

// Release frees the slot, wiping the value first when it implements Wiper.
// The slot's generation advances, invalidating every outstanding copy of h.
func (t *Table[T]) Release(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.valid(h) {
		return ErrStale
	}
	s := &t.slots[h.index]
	if w, ok := any(s.value).(Wiper); ok {
		w.Wipe()
	}
	var zero T
	s.value = zero
	s.live = false
	s.gen++
	t.free = append(t.free, h.index)
	return nil
}

// Len reports the number of live slots.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots) - len(t.free)
}

func (t *Table[T]) valid(h Handle) bool {
	return h.index >= 0 && h.index < len(t.slots) &&
		t.slots[h.index].live && t.slots[h.index].gen == h.gen
}
