package progress

import (
	"sync"

	"github.com/AndreyAkinshin/livetest/internal/errors"
)

// Board is the fixed-size array of visible workers. It is sized to the
// declared parallelism, so running out of slots is a caller bug.
type Board struct {
	mu    sync.RWMutex
	slots []*Worker
}

// NewBoard creates a board with capacity slots.
func NewBoard(capacity int) *Board {
	return &Board{slots: make([]*Worker, max(capacity, 0))}
}

// Add places w in the first free slot and returns its index. It panics with
// an unreachable-state error when the board is full.
func (b *Board) Add(w *Worker) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.slots {
		if s == nil {
			b.slots[i] = w
			w.slot.Store(int64(i))
			w.touch()
			return i
		}
	}
	panic(errors.Unreachablef("no free progress slot for %q (capacity %d)", w.Name(), len(b.slots)))
}

// Remove frees slot for reuse. Out-of-range slots are ignored.
func (b *Board) Remove(slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot < 0 || slot >= len(b.slots) {
		return
	}
	if w := b.slots[slot]; w != nil {
		w.slot.Store(-1)
	}
	b.slots[slot] = nil
}

// Update applies mutate to the worker in slot and bumps its version.
// Empty or out-of-range slots are ignored.
func (b *Board) Update(slot int, mutate func(*Worker)) {
	b.mu.RLock()
	var w *Worker
	if slot >= 0 && slot < len(b.slots) {
		w = b.slots[slot]
	}
	b.mu.RUnlock()
	if w == nil {
		return
	}
	if mutate != nil {
		mutate(w)
	}
	w.touch()
}

// Snapshot copies the slot array. Empty slots are nil.
func (b *Board) Snapshot() []*Worker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Worker, len(b.slots))
	copy(out, b.slots)
	return out
}
