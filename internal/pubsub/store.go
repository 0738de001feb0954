// Package pubsub provides a small observable value container used by the
// manager types. One goroutine owns writes; any number of subscribers
// observe published snapshots.
package pubsub

import "sync"

// Store holds a value of type T and fans out snapshots to subscribers.
// Writers must be a single owner; subscribers are read-only.
type Store[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[int]chan T
	next  int
}

func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: map[int]chan T{}}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and publishes it to all subscribers.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.publishLocked()
	s.mu.Unlock()
}

// Update applies fn to the current value and publishes the result.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	s.publishLocked()
	s.mu.Unlock()
}

// Subscribe returns a channel that receives every published snapshot and
// a cancel func that closes it. A slow subscriber drops the oldest
// pending snapshot instead of blocking the writer.
func (s *Store[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store[T]) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.value:
		default:
			// drop the oldest snapshot, keep the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.value:
			default:
			}
		}
	}
}
