package jsonl

import (
	"bytes"
	"io"
	"sync"

	"github.com/signatory-io/jsonlines/codec"
	"github.com/signatory-io/jsonlines/logger"
)

type sender struct {
	codec codec.Codec
	log   logger.Logger
	limit int

	mu       sync.Mutex
	cond     sync.Cond
	chunks   [][]byte
	buffered int
	state    State
	err      error
	onCancel func()
	cancel   chan struct{}
	records  int
}

// Stream is the byte side of a Sender. Every Read returns bytes of at most one
// record. Closing the Stream before the Writer is closed cancels the stream.
type Stream struct {
	s *sender
}

// Writer is the producer side of a Sender. It is safe for concurrent use;
// records are emitted in the order Write calls acquire the stream.
type Writer struct {
	s *sender
}

// NewSender returns a connected Stream and Writer. Each written value is
// encoded as one line of JSON followed by a line feed.
func NewSender(opts ...Option) (*Stream, *Writer) {
	o := newOptions(opts)
	s := &sender{
		codec:  o.codec,
		log:    o.log,
		limit:  o.bufferLimit,
		cancel: make(chan struct{}),
	}
	s.cond.L = &s.mu
	return &Stream{s: s}, &Writer{s: s}
}

func encodeRecord(c codec.Codec, v any) ([]byte, error) {
	buf, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(buf, '\n') >= 0 {
		return nil, ErrLineFeed
	}
	return append(buf, '\n'), nil
}

// Write encodes v and enqueues it. If the buffer limit is reached it blocks
// until the consumer reads or cancels. It returns ErrClosed after Close or
// CloseWithError and ErrCancelled after the consumer cancelled.
func (w *Writer) Write(v any) error {
	s := w.s
	rec, err := encodeRecord(s.codec, v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.limit > 0 && s.buffered >= s.limit && !s.state.Terminal() {
		s.cond.Wait()
	}
	switch s.state {
	case StateCancelled:
		return ErrCancelled
	case StateClosed, StateErrored:
		return ErrClosed
	case StateIdle:
		s.state = StateStreaming
	}
	s.chunks = append(s.chunks, rec)
	s.buffered += len(rec)
	s.records++
	s.cond.Broadcast()
	return nil
}

// Close marks the stream complete. Buffered records are still delivered.
func (w *Writer) Close() error { return w.s.complete(StateClosed, nil) }

// CloseWithError terminates the stream. The consumer receives err after the
// buffered records.
func (w *Writer) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return w.s.complete(StateErrored, err)
}

func (s *sender) complete(to State, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateCancelled:
		return ErrCancelled
	case StateClosed, StateErrored:
		return ErrClosed
	}
	s.state = to
	s.err = err
	s.cond.Broadcast()
	s.log.Debugf("Stream %v after %d records", to, s.records)
	return nil
}

// OnCancel registers fn to be called once if the consumer cancels the stream
// before it is closed. It replaces a previously registered callback. If the
// stream is already cancelled fn is called immediately.
func (w *Writer) OnCancel(fn func()) {
	s := w.s
	s.mu.Lock()
	if s.state == StateCancelled {
		s.mu.Unlock()
		fn()
		return
	}
	s.onCancel = fn
	s.mu.Unlock()
}

// Cancelled returns a channel closed when the consumer cancels the stream
func (w *Writer) Cancelled() <-chan struct{} { return w.s.cancel }

func (w *Writer) State() State { return w.s.getState() }

func (s *sender) getState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (st *Stream) State() State { return st.s.getState() }

// next returns the pending head chunk, waiting for one if needed. The caller
// must consume it with advance.
func (s *sender) next() ([]byte, error) {
	for len(s.chunks) == 0 {
		switch s.state {
		case StateClosed:
			return nil, io.EOF
		case StateErrored:
			return nil, s.err
		case StateCancelled:
			return nil, ErrCancelled
		case StateIdle:
			s.state = StateStreaming
		}
		s.cond.Wait()
	}
	return s.chunks[0], nil
}

func (s *sender) advance(n int) {
	if n == len(s.chunks[0]) {
		s.chunks[0] = nil
		s.chunks = s.chunks[1:]
	} else {
		s.chunks[0] = s.chunks[0][n:]
	}
	s.buffered -= n
	s.cond.Broadcast()
}

// Read blocks until a record is available and copies as much of it as fits
// into p. It returns io.EOF after a normal close once everything was read.
// Read, WriteTo and Close belong to the single consumer of the stream.
func (st *Stream) Read(p []byte) (int, error) {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, err := s.next()
	if err != nil {
		return 0, err
	}
	n := copy(p, chunk)
	s.advance(n)
	return n, nil
}

// WriteTo writes records to w one at a time as they become available. If w
// fails the stream is cancelled.
func (st *Stream) WriteTo(w io.Writer) (n int64, err error) {
	s := st.s
	for {
		s.mu.Lock()
		chunk, rerr := s.next()
		s.mu.Unlock()
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, rerr
		}

		// Only the consumer side replaces the head chunk, so it can be written
		// without holding the lock
		m, werr := w.Write(chunk)
		n += int64(m)

		s.mu.Lock()
		if len(s.chunks) != 0 {
			s.advance(m)
		}
		s.mu.Unlock()

		if werr == nil && m != len(chunk) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			st.Close()
			return n, werr
		}
	}
}

// Close cancels the stream if the Writer has not been closed yet, invoking the
// OnCancel callback. Buffered records are discarded.
func (st *Stream) Close() error {
	s := st.s
	s.mu.Lock()
	s.chunks = nil
	s.buffered = 0
	if !transition(&s.state, StateCancelled) {
		s.cond.Broadcast()
		s.mu.Unlock()
		return nil
	}
	fn := s.onCancel
	s.onCancel = nil
	close(s.cancel)
	s.cond.Broadcast()
	s.log.Debugf("Stream cancelled by consumer after %d records", s.records)
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

var (
	_ io.ReadCloser = (*Stream)(nil)
	_ io.WriterTo   = (*Stream)(nil)
)
