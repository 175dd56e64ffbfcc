package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/alanwang67/message_board/metrics"
	"github.com/alanwang67/message_board/sequencer"
	"github.com/alanwang67/message_board/store"
	"github.com/charmbracelet/log"
)

// Server is the state of one worker instance. Id is fixed at construction,
// requests is only ever touched by the goroutine running the worker, and
// messages is shared with every other instance in the process.
type Server struct {
	Id uint64

	requests uint64
	messages *store.Store
	now      func() time.Time
}

// PoolConfig describes the worker pool behind the HTTP surface.
type PoolConfig struct {
	Workers   int
	BodyLimit int64

	Sequencer *sequencer.Sequencer
	Store     *store.Store
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	Now       func() time.Time
}

// Pool routes requests to a fixed set of workers. Each worker owns one
// Server and handles one request at a time.
type Pool struct {
	workers   []*worker
	next      atomic.Uint64
	bodyLimit int64
	routes    map[string]route

	metrics *metrics.Metrics
	logger  *log.Logger

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type worker struct {
	server *Server
	jobs   chan job
	logger *log.Logger
}

// operation is the body of a handler once the request has been decoded.
type operation func(s *Server) (any, error)

type job struct {
	op   operation
	done chan result
}

type result struct {
	worker uint64
	reply  any
	err    error
}
