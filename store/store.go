package store

import (
	"errors"
	"sync"
)

// ErrPoisoned is returned by every operation once a critical section has
// panicked. The message list may be inconsistent at that point so it is
// never touched again.
var ErrPoisoned = errors.New("store: lock poisoned by an earlier panic")

// Store is the ordered message list shared by all workers of a process.
type Store struct {
	mutex    sync.Mutex
	messages []string
	poisoned bool
}

func New() *Store {
	return &Store{messages: make([]string, 0)}
}

// Snapshot returns a copy of the current messages. The result is never nil.
func (s *Store) Snapshot() ([]string, error) {
	var out []string
	err := s.withLock(func() {
		out = make([]string, len(s.messages))
		copy(out, s.messages)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append adds message at the end of the list.
func (s *Store) Append(message string) error {
	return s.withLock(func() {
		s.messages = append(s.messages, message)
	})
}

// Clear empties the list.
func (s *Store) Clear() error {
	return s.withLock(func() {
		s.messages = s.messages[:0:0]
	})
}

// Len reports the number of stored messages, or 0 once poisoned.
func (s *Store) Len() int {
	n := 0
	_ = s.withLock(func() {
		n = len(s.messages)
	})
	return n
}

// Poisoned reports whether an earlier critical section panicked.
func (s *Store) Poisoned() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.poisoned
}

// withLock runs fn with the mutex held. A panic in fn marks the store
// poisoned, releases the lock and is re-raised.
func (s *Store) withLock(fn func()) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.poisoned {
		return ErrPoisoned
	}

	completed := false
	defer func() {
		if !completed {
			s.poisoned = true
		}
	}()
	fn()
	completed = true
	return nil
}
