package sequencer

import "sync/atomic"

// Sequencer hands out server identities. One is created at process startup
// and passed to every worker constructor.
type Sequencer struct {
	count atomic.Uint64
}
