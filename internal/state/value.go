package state

import (
	"context"
	"sync"
)

// Value is an observable holder. Subscribers receive the current value on
// subscribe and every later value; a slow subscriber only keeps the latest.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	subs   map[int]chan T
	nextID int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]chan T)}
}

func (s *Value[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
	s.broadcast()
}

// Update applies fn to the current value atomically and stores the result.
func (s *Value[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = fn(s.v)
	s.broadcast()
	return s.v
}

// Subscribe returns a channel closed when ctx is done.
func (s *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]chan T)
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.v
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// broadcast must be called with mu held.
func (s *Value[T]) broadcast() {
	for _, ch := range s.subs {
		select {
		case ch <- s.v:
			continue
		default:
		}
		// Drop the stale pending value and replace it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.v:
		default:
		}
	}
}
