package flux

import (
	"io"
	"reflect"
	"sort"
	"sync"
)

// Store holds a state value and notifies observers when it changes. The
// zero value is ready to use with the zero state; embed it in a struct to
// make that struct a store:
//
//	//mini:store
//	type Counter struct {
//	    flux.Store[CounterState]
//	}
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	observers map[uint64]func(S)
	nextID    uint64
}

// NewStore creates a store holding initial.
func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{state: initial}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState replaces the state. Observers run only when the new state is not
// deeply equal to the old one.
func (s *Store[S]) SetState(next S) {
	s.mu.Lock()
	if reflect.DeepEqual(s.state, next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	fns := s.snapshot()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// snapshot returns observers in registration order. Callers hold mu.
func (s *Store[S]) snapshot() []func(S) {
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(S), len(ids))
	for i, id := range ids {
		fns[i] = s.observers[id]
	}
	return fns
}

// Observe registers fn for state changes. With hot set, fn also runs once
// immediately with the current state.
func (s *Store[S]) Observe(hot bool, fn func(S)) io.Closer {
	s.mu.Lock()
	if s.observers == nil {
		s.observers = make(map[uint64]func(S))
	}
	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	current := s.state
	s.mu.Unlock()

	if hot {
		fn(current)
	}
	return closerFunc(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		return nil
	})
}

// Close drops every observer.
func (s *Store[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = nil
	return nil
}
