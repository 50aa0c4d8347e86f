package listener

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/models"

	"golang.org/x/sync/semaphore"
)

// ParamListener accepts parameter requests and runs each connection on its
// own goroutine. With max_connections > 0 the accept loop waits for a free
// slot before taking the next connection.
type ParamListener struct {
	Config    *models.MConfig
	Estimator interfaces.IParameterEstimator
	Metrics   *metrics.Collector
	Events    interfaces.IEventSink
	Logger    *logger.Logger

	mu       sync.Mutex
	ln       net.Listener
	sem      *semaphore.Weighted
	closing  atomic.Bool
	handlers sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewParamListener(cfg *models.MConfig, est interfaces.IParameterEstimator, m *metrics.Collector,
	events interfaces.IEventSink, log *logger.Logger) *ParamListener {

	l := &ParamListener{
		Config:    cfg,
		Estimator: est,
		Metrics:   m,
		Events:    events,
		Logger:    log,
	}
	if cfg.MaxConnections > 0 {
		l.sem = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}
	return l
}

// -----------------------------------------------------------------------------

// Listen binds host:port. A bind failure is fatal to the caller.
func (l *ParamListener) Listen(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", l.Config.Host, l.Config.Port)
	ln, err := helpers.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	l.Logger.Info("Listening on %s (default years %d)", ln.Addr(), l.Config.DefaultYears)
	return nil
}

// -----------------------------------------------------------------------------

// Addr is the bound address, nil before Listen.
func (l *ParamListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// -----------------------------------------------------------------------------

// Serve runs the accept loop until ctx is done or Close is called, then waits
// for in-flight connections and returns nil. Any other accept error ends the
// loop and is returned.
func (l *ParamListener) Serve(ctx context.Context) error {
	if l.Addr() == nil {
		if err := l.Listen(ctx); err != nil {
			return err
		}
	}

	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	// handlers outlive a shutdown signal; they finish their exchange
	connCtx := context.WithoutCancel(ctx)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if l.closing.Load() {
				l.handlers.Wait()
				l.Logger.Info("Listener stopped")
				return nil
			}
			return helpers.NewTransportError("accept", err)
		}

		if l.sem != nil {
			if err := l.sem.Acquire(ctx, 1); err != nil {
				conn.Close()
				continue
			}
		}

		l.handlers.Add(1)
		go func() {
			defer l.handlers.Done()
			if l.sem != nil {
				defer l.sem.Release(1)
			}
			l.handleConnection(connCtx, conn)
		}()
	}
}

// -----------------------------------------------------------------------------

// Close stops accepting. Serve returns once in-flight handlers finish.
func (l *ParamListener) Close() error {
	l.closing.Store(true)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
