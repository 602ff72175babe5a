package loomlib

import "sync"

// pipeCore is the state shared by both endpoints of a pipe: an unbounded
// FIFO queue plus the disconnect flag set when the receiver goes away.
type pipeCore[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
}

// NewPipe creates a unidirectional message pipe. Sends never block;
// receives never block. Once the receiver is closed, sends report false
// and discard their payload.
func NewPipe[T any]() (*Sender[T], *Receiver[T]) {
	core := &pipeCore[T]{}
	return &Sender[T]{core: core}, &Receiver[T]{core: core}
}

// Sender is the producing endpoint of a pipe.
type Sender[T any] struct {
	core *pipeCore[T]
}

// Send enqueues msg and reports whether the receiving end is still
// attached. On false the payload has been discarded, not queued.
// Messages from one sender are delivered in send order.
func (s *Sender[T]) Send(msg T) bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	if s.core.closed {
		return false
	}
	s.core.queue = append(s.core.queue, msg)
	return true
}

// Disconnected reports whether the receiver has been closed. Like Send,
// this is a lazy check, not a notification.
func (s *Sender[T]) Disconnected() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.closed
}

// Clone returns another sender feeding the same receiver. Each sender
// preserves its own send order; interleaving between senders is
// unspecified.
func (s *Sender[T]) Clone() *Sender[T] {
	return &Sender[T]{core: s.core}
}

// Receiver is the consuming endpoint of a pipe.
type Receiver[T any] struct {
	core *pipeCore[T]
}

// TryRecv pops the oldest queued message without suspending. The second
// result is false when nothing is queued.
func (r *Receiver[T]) TryRecv() (T, bool) {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	if len(r.core.queue) == 0 || r.core.closed {
		var zero T
		return zero, false
	}
	msg := r.core.queue[0]
	r.core.queue = r.core.queue[1:]
	return msg, true
}

// Len reports the number of queued messages.
func (r *Receiver[T]) Len() int {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	return len(r.core.queue)
}

// Close detaches the receiver. Queued messages are discarded and later
// sends return false. Safe to call more than once.
func (r *Receiver[T]) Close() {
	r.core.mu.Lock()
	defer r.core.mu.Unlock()
	r.core.closed = true
	r.core.queue = nil
}
