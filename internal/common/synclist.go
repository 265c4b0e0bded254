package common

import (
	"sync"
	"sync/atomic"
)

// SyncList is an append-only list safe for concurrent append and iterate.
// Insertion order is preserved; Snapshot returns a consistent copy that is
// never affected by later appends. Freeze takes the final snapshot once and
// makes subsequent reads lock-free and allocation-free.
type SyncList[T any] struct {
	mu     sync.Mutex
	items  []T
	frozen atomic.Pointer[[]T]
}

// Append adds items to the end of the list. Panics after Freeze.
func (l *SyncList[T]) Append(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.frozen.Load() != nil {
		panic("common: append to frozen list")
	}

	l.items = append(l.items, items...)
}

// Snapshot returns a copy of the current contents in insertion order.
// After Freeze it returns the frozen slice without locking or allocating.
func (l *SyncList[T]) Snapshot() []T {
	if f := l.frozen.Load(); f != nil {
		return *f
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, len(l.items))
	copy(out, l.items)

	return out
}

// Len returns the current number of items.
func (l *SyncList[T]) Len() int {
	if f := l.frozen.Load(); f != nil {
		return len(*f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items)
}

// Clear removes all items. Panics after Freeze.
func (l *SyncList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.frozen.Load() != nil {
		panic("common: clear of frozen list")
	}

	l.items = nil
}

// Freeze takes the final snapshot and disallows further mutation.
// Idempotent; returns the frozen contents.
func (l *SyncList[T]) Freeze() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f := l.frozen.Load(); f != nil {
		return *f
	}

	out := make([]T, len(l.items))
	copy(out, l.items)
	l.frozen.Store(&out)
	l.items = nil

	return out
}
