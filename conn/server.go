package conn

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/signatory-io/jsonlines/logger"
	"golang.org/x/sync/errgroup"
)

// Handler serves a single connection. The connection is closed when it
// returns. ctx is cancelled on Shutdown.
type Handler[T any] func(ctx context.Context, c *Conn[T]) error

type Server[T any] struct {
	Handler Handler[T]
	Options []jsonl.Option
	Logger  logger.Logger
	// MaxConnections bounds the number of connections served at once.
	// Accepting pauses while the limit is reached. Zero means no limit.
	MaxConnections int

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	shutdown bool
	conns    map[*Conn[T]]struct{}
	forced   bool
}

func (s *Server[T]) log() logger.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Nop()
}

// Serve accepts connections on l until Shutdown is called or l fails
func (s *Server[T]) Serve(l net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		l.Close()
		cancel()
		return nil
	}
	s.listener = l
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	defer close(done)
	defer cancel()

	var g errgroup.Group
	if s.MaxConnections > 0 {
		g.SetLimit(s.MaxConnections)
	}
	var err error
	for {
		var nc net.Conn
		if nc, err = l.Accept(); err != nil {
			break
		}
		c := New[T](nc, s.Options...)
		if !s.track(c) {
			c.Close()
			continue
		}
		g.Go(func() error {
			defer s.untrack(c)
			defer c.Close()
			log := s.log().With("remote", nc.RemoteAddr().String())
			log.Debug("Connection accepted")
			if err := s.Handler(ctx, c); err != nil {
				log.Debugf("Connection handler: %v", err)
			}
			return nil
		})
	}
	g.Wait()
	if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server[T]) track(c *Conn[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forced {
		return false
	}
	if s.conns == nil {
		s.conns = make(map[*Conn[T]]struct{})
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server[T]) untrack(c *Conn[T]) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Shutdown stops accepting connections, cancels the handlers' context and
// waits for them to return. If ctx expires first the remaining connections
// are closed, which unblocks handlers waiting on their peer, and ctx.Err()
// is returned.
func (s *Server[T]) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	l, cancel, done := s.listener, s.cancel, s.done
	s.mu.Unlock()
	if l == nil {
		return nil
	}

	cancel()
	if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	s.forced = true
	conns := make([]*Conn[T], 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	s.log().Warnf("Shutdown timed out, %d connections closed", len(conns))
	return ctx.Err()
}
