package loomlib

import "sync"

// borrowState tracks the outstanding borrows of a shared value. It lives
// on the shared allocation, so every clone of the same logical value
// observes the same counters. Acquire and release never block; a refused
// acquire is reported through an error, not a wait.
type borrowState struct {
	mu        sync.Mutex
	shared    int
	exclusive bool
}

// tryAcquireShared admits a new immutable borrow unless an exclusive
// borrow is live.
func (b *borrowState) tryAcquireShared() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exclusive {
		return ErrValueBorrowedMut
	}
	b.shared++
	return nil
}

func (b *borrowState) releaseShared() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shared == 0 {
		return ErrBorrowNotHeld
	}
	b.shared--
	return nil
}

// tryAcquireExclusive admits a mutable borrow only while no borrow of
// any kind is live.
func (b *borrowState) tryAcquireExclusive() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exclusive || b.shared > 0 {
		return ErrValueBorrowed
	}
	b.exclusive = true
	return nil
}

func (b *borrowState) releaseExclusive() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exclusive {
		return ErrBorrowNotHeld
	}
	b.exclusive = false
	return nil
}

func (b *borrowState) snapshot() (shared int, exclusive bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shared, b.exclusive
}
