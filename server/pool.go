package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alanwang67/message_board/config"
	"github.com/alanwang67/message_board/protocol"
	"github.com/alanwang67/message_board/sequencer"
	"github.com/alanwang67/message_board/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewPool builds cfg.Workers instances sharing one store and starts a
// goroutine for each. Identities come from cfg.Sequencer.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = config.DefaultWorkers
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = config.DefaultBodyLimit
	}
	if cfg.Sequencer == nil {
		cfg.Sequencer = sequencer.New()
	}
	if cfg.Store == nil {
		cfg.Store = store.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	p := &Pool{
		workers:   make([]*worker, 0, cfg.Workers),
		bodyLimit: cfg.BodyLimit,
		routes:    newRoutes(),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		quit:      make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		s := New(cfg.Sequencer.Next(), cfg.Store, cfg.Now)
		w := &worker{
			server: s,
			jobs:   make(chan job),
			logger: cfg.Logger.With("worker", s.Id),
		}
		p.workers = append(p.workers, w)

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(p.quit)
		}()
	}
	p.metrics.SetWorkers(len(p.workers))
	p.logger.Debugf("started %d workers", len(p.workers))
	return p
}

// Close stops every worker and waits for them to exit. Requests arriving
// afterwards get 503.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		p.wg.Wait()
		p.metrics.SetWorkers(0)
	})
}

// Size is the number of worker instances.
func (p *Pool) Size() int {
	return len(p.workers)
}

func (w *worker) run(quit <-chan struct{}) {
	w.logger.Debug("worker started")
	for {
		select {
		case j := <-w.jobs:
			j.done <- w.serve(j)
		case <-quit:
			w.logger.Debug("worker stopped", "requests", w.server.Requests())
			return
		}
	}
}

func (w *worker) serve(j job) (res result) {
	res.worker = w.server.Id
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked", "panic", r)
			res.reply = nil
			res.err = httpError{
				Status: http.StatusInternalServerError,
				Code:   "internal",
				Detail: fmt.Sprint(r),
			}
		}
	}()
	res.reply, res.err = j.op(w.server)
	return res
}

// dispatch hands op to the next worker in round-robin order and waits for
// the result.
func (p *Pool) dispatch(ctx context.Context, op operation) result {
	w := p.workers[(p.next.Add(1)-1)%uint64(len(p.workers))]
	j := job{op: op, done: make(chan result, 1)}

	unavailable := result{worker: w.server.Id, err: httpError{
		Status: http.StatusServiceUnavailable,
		Code:   "unavailable",
		Detail: "server is shutting down",
	}}

	select {
	case w.jobs <- j:
	case <-p.quit:
		return unavailable
	case <-ctx.Done():
		return result{worker: w.server.Id, err: ctx.Err()}
	}

	select {
	case res := <-j.done:
		return res
	case <-ctx.Done():
		return result{worker: w.server.Id, err: ctx.Err()}
	}
}

func (p *Pool) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.NewString()
	w.Header().Set(protocol.HeaderRequestID, reqID)

	name := "unmatched"
	workerID := "-"
	var status int

	rt, ok := p.routes[r.URL.Path]
	switch {
	case !ok:
		status = writeError(w, httpError{Status: http.StatusNotFound, Code: "not_found", Detail: r.URL.Path})
	case r.Method != rt.method:
		name = rt.name
		w.Header().Set("Allow", rt.method)
		status = writeError(w, httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: r.Method})
	default:
		name = rt.name
		op, err := rt.bind(w, r, p.bodyLimit)
		if err != nil {
			status = writeError(w, toHTTPError(err))
			break
		}
		res := p.dispatch(r.Context(), op)
		workerID = fmt.Sprint(res.worker)
		if res.err != nil {
			status = writeError(w, toHTTPError(res.err))
			break
		}
		status = writeJSON(w, http.StatusOK, res.reply)
	}

	elapsed := time.Since(start)
	p.metrics.Observe(name, status, elapsed)
	p.logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"worker", workerID,
		"elapsed", elapsed,
		"req_id", reqID,
	)
}
