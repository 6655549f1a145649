package project

import "sync"

// Store holds the session's project in memory. The contract is whole-value
// replace only: there is no partial-field API, editing surfaces read the
// current project and write back a full replacement.
type Store struct {
	mu      sync.RWMutex
	current Project
}

func NewStore(initial Project) *Store {
	return &Store{current: initial}
}

// Read returns a snapshot of the current project. The caption slice is
// copied so the caller can never tear a concurrently written replacement.
func (s *Store) Read() Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.current
	p.Lines = cloneLines(p.Lines)
	return p
}

// Write replaces the stored project wholesale.
func (s *Store) Write(p Project) {
	p.Lines = cloneLines(p.Lines)

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}
