package sequencer

import (
	"github.com/charmbracelet/log"
)

// New creates a Sequencer whose first identity is 0.
func New() *Sequencer {
	return &Sequencer{}
}

// Next returns the current count and increments it. Concurrent callers
// never observe the same value.
func (s *Sequencer) Next() uint64 {
	id := s.count.Add(1) - 1
	log.Debugf("sequencer issued server id %d", id)
	return id
}

// Issued reports how many identities have been handed out so far.
func (s *Sequencer) Issued() uint64 {
	return s.count.Load()
}
