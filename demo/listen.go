package demo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/signatory-io/jsonlines/conn"
	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/signatory-io/jsonlines/logger"
)

type Service interface {
	Addr() net.Addr
	Shutdown(ctx context.Context) error
}

type httpSvc struct {
	srv      *http.Server
	listener net.Listener
}

func (s *httpSvc) Addr() net.Addr                     { return s.listener.Addr() }
func (s *httpSvc) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

type tcpSvc struct {
	srv      *conn.Server[any]
	listener net.Listener
}

func (s *tcpSvc) Addr() net.Addr                     { return s.listener.Addr() }
func (s *tcpSvc) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// Listen starts serving the demo feed on address, which has the form
// transport://[host]:port where transport is http or tcp. Over tcp every
// connection receives one feed.
func Listen(address string, conf *Config, log logger.Logger, opts ...jsonl.Option) (Service, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	l := log.With("address", u.Host)

	switch u.Scheme {
	case "http":
		tl, err := net.Listen("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		srv := http.Server{
			Handler: NewHandler(conf, log, opts...),
		}
		go func() {
			if err := srv.Serve(tl); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error(err)
			}
		}()
		l.Info("Serving HTTP feed")
		return &httpSvc{srv: &srv, listener: tl}, nil

	case "tcp":
		tl, err := net.Listen("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		feedConf := *conf
		srv := conn.Server[any]{
			Handler: func(ctx context.Context, c *conn.Conn[any]) error {
				if err := Produce(ctx, c.Writer(), &feedConf); err != nil {
					return err
				}
				return c.CloseWrite()
			},
			Options: append([]jsonl.Option{jsonl.WithLogger(log)}, opts...),
			Logger:  l,
		}
		go func() {
			if err := srv.Serve(tl); err != nil {
				l.Error(err)
			}
		}()
		l.Info("Serving TCP feed")
		return &tcpSvc{srv: &srv, listener: tl}, nil

	default:
		return nil, fmt.Errorf("unknown feed transport: %s", u.Scheme)
	}
}
