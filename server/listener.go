package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alanwang67/message_board/config"
	"github.com/alanwang67/message_board/metrics"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Listener serves a handler on the configured address and, when
// MetricsListen is set, the Prometheus registry on a second address.
type Listener struct {
	cfg     config.Config
	handler http.Handler
	metrics *metrics.Metrics
	logger  *log.Logger

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

func NewListener(cfg config.Config, handler http.Handler, m *metrics.Metrics, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{
		cfg:     cfg,
		handler: handler,
		metrics: m,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the listener is bound.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Addr returns the bound address, or nil before Ready is closed.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// Start binds and serves until ctx is done, then shuts down gracefully
// within cfg.ShutdownTimeout.
func (l *Listener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.cfg.Addr())
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.addr = ln.Addr()
	l.mu.Unlock()
	close(l.ready)

	l.logger.Info("starting http server", "addr", ln.Addr().String(), "workers", l.cfg.Workers)

	servers := []*http.Server{{
		Handler:           l.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	listeners := []net.Listener{ln}

	if l.cfg.MetricsListen != "" && l.metrics != nil {
		mln, err := net.Listen("tcp", l.cfg.MetricsListen)
		if err != nil {
			_ = ln.Close()
			return err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", l.metrics.Handler())
		servers = append(servers, &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, mln)
		l.logger.Info("metrics enabled", "addr", mln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range servers {
		srv, sl := servers[i], listeners[i]
		g.Go(func() error {
			if err := srv.Serve(sl); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		l.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), l.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			l.logger.Error("graceful shutdown failed", "err", err)
			return err
		}
		l.logger.Info("shutdown complete")
		return nil
	})
	return g.Wait()
}
