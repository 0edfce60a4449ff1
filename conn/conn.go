// Package conn carries JSON Lines in both directions over a stream connection.
package conn

import (
	"context"
	"errors"
	"io"
	"iter"
	"net"
	"sync"
	"time"

	"github.com/signatory-io/jsonlines/jsonl"
)

// Conn reads records of type T from the peer and writes arbitrary values to
// it. Outgoing records are pumped by a background goroutine.
type Conn[T any] struct {
	conn   net.Conn
	recv   *jsonl.Receiver[T]
	stream *jsonl.Stream
	w      *jsonl.Writer

	done    chan struct{}
	pumpErr error
	once    sync.Once
}

func (c *Conn[T]) LocalAddr() net.Addr           { return c.conn.LocalAddr() }
func (c *Conn[T]) RemoteAddr() net.Addr          { return c.conn.RemoteAddr() }
func (c *Conn[T]) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

func New[T any](conn net.Conn, opts ...jsonl.Option) *Conn[T] {
	stream, w := jsonl.NewSender(opts...)
	c := &Conn[T]{
		conn:   conn,
		recv:   jsonl.NewReceiver[T](readOnly{conn}, opts...),
		stream: stream,
		w:      w,
		done:   make(chan struct{}),
	}
	go c.pump()
	return c
}

func Dial[T any](ctx context.Context, network, address string, opts ...jsonl.Option) (*Conn[T], error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return New[T](conn, opts...), nil
}

// readOnly hides Close so that a finished read side doesn't tear down the
// whole connection
type readOnly struct {
	r io.Reader
}

func (r readOnly) Read(p []byte) (int, error) { return r.r.Read(p) }

type closeWriter interface {
	CloseWrite() error
}

func (c *Conn[T]) pump() {
	defer close(c.done)
	_, err := c.stream.WriteTo(c.conn)
	if err == nil {
		// Writer closed normally, signal EOF to the peer
		if cw, ok := c.conn.(closeWriter); ok {
			err = cw.CloseWrite()
		}
	}
	c.pumpErr = err
}

// WriteMessage queues v for the peer. It returns jsonl.ErrCancelled once the
// peer stopped reading.
func (c *Conn[T]) WriteMessage(v any) error { return c.w.Write(v) }

// ReadMessage returns the next record sent by the peer, or io.EOF once the
// peer closed its write side.
func (c *Conn[T]) ReadMessage() (T, error) { return c.recv.Next() }

func (c *Conn[T]) Messages() iter.Seq2[T, error] { return c.recv.All() }

// Writer exposes the outgoing side, e.g. to register an OnCancel callback
func (c *Conn[T]) Writer() *jsonl.Writer { return c.w }

// CloseWrite finishes the outgoing stream and waits until every queued
// record has been handed to the connection. The Writer may already have been
// closed, e.g. by a producer that owns it.
func (c *Conn[T]) CloseWrite() error {
	if err := c.w.Close(); err != nil && !errors.Is(err, jsonl.ErrClosed) {
		return err
	}
	<-c.done
	if errors.Is(c.pumpErr, jsonl.ErrCancelled) {
		return nil
	}
	return c.pumpErr
}

// Close tears down both directions. Pending outgoing records are dropped.
func (c *Conn[T]) Close() (err error) {
	c.once.Do(func() {
		c.recv.Cancel()
		c.stream.Close()
		err = c.conn.Close()
		<-c.done
	})
	return err
}
