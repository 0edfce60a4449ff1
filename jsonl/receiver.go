package jsonl

import (
	"errors"
	"io"
	"iter"
	"sync"

	"github.com/signatory-io/jsonlines/logger"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Receiver decodes a JSON Lines byte source into values of type T. Records are
// pulled on demand: the source is only read when no decoded record is pending.
//
// Next and All must be used from a single goroutine. Cancel may be called from
// any goroutine, including while Next is blocked on the source.
type Receiver[T any] struct {
	src     io.Reader
	text    io.Reader
	scanner *Scanner[T]
	buf     []byte
	log     logger.Logger

	queue []T
	// Terminal condition to report once queue is drained
	end error

	mu    sync.Mutex
	state State
}

// NewReceiver returns a Receiver reading from src. If src implements
// io.Closer it is closed when the Receiver is cancelled or reaches a
// terminal state.
func NewReceiver[T any](src io.Reader, opts ...Option) *Receiver[T] {
	o := newOptions(opts)
	return &Receiver[T]{
		src: src,
		// Strips a leading BOM, holds back incomplete UTF-8 sequences between
		// reads and flushes them as U+FFFD at EOF
		text:    transform.NewReader(src, unicode.UTF8BOM.NewDecoder()),
		scanner: NewScanner[T](o.codec),
		buf:     make([]byte, o.readSize),
		log:     o.log,
	}
}

func (r *Receiver[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Next returns the next record. It returns io.EOF once the source is
// exhausted, ErrCancelled after Cancel, and a *DecodeError or
// *TransportError if the stream failed. A final line without a terminating
// line feed is dropped.
func (r *Receiver[T]) Next() (T, error) {
	var zero T
	for {
		r.mu.Lock()
		st := r.state
		if st == StateIdle {
			r.state = StateStreaming
			r.log.Debug("Receiving stream")
		}
		r.mu.Unlock()

		switch st {
		case StateCancelled:
			return zero, ErrCancelled
		case StateClosed:
			return zero, io.EOF
		case StateErrored:
			return zero, r.end
		}

		if len(r.queue) != 0 {
			v := r.queue[0]
			r.queue[0] = zero
			r.queue = r.queue[1:]
			return v, nil
		}
		if r.end != nil {
			return zero, r.finish()
		}
		r.fill()
	}
}

func (r *Receiver[T]) fill() {
	n, err := r.text.Read(r.buf)
	if n > 0 {
		if derr := r.scanner.Append(r.buf[:n], r.push); derr != nil {
			r.end = derr
			return
		}
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if b := r.scanner.Buffered(); b != 0 {
			r.log.Debugf("Dropping %d bytes of unterminated trailing line", b)
		}
		r.end = io.EOF
	default:
		r.end = &TransportError{Err: err}
	}
}

func (r *Receiver[T]) push(v T) {
	r.queue = append(r.queue, v)
	r.log.Tracef("Record %d decoded", r.scanner.Lines())
}

// finish moves the receiver into the terminal state matching r.end
func (r *Receiver[T]) finish() error {
	to := StateErrored
	if r.end == io.EOF {
		to = StateClosed
	}
	r.mu.Lock()
	ok := transition(&r.state, to)
	r.mu.Unlock()
	if !ok {
		// Cancelled concurrently, the read error is a consequence of it
		return ErrCancelled
	}
	r.closeSource()
	if to == StateErrored {
		r.log.Debugf("Stream failed: %v", r.end)
	} else {
		r.log.Debugf("Stream complete, %d lines", r.scanner.Lines())
	}
	return r.end
}

// Cancel stops the stream and closes the source. It does nothing if the
// stream has already terminated.
func (r *Receiver[T]) Cancel() error {
	r.mu.Lock()
	ok := transition(&r.state, StateCancelled)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	r.log.Debug("Stream cancelled")
	return r.closeSource()
}

func (r *Receiver[T]) closeSource() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// All returns an iterator over the remaining records. A terminal error is
// yielded once with the zero value. Breaking out of the loop cancels the
// receiver. Cancellation ends the iteration without an error.
func (r *Receiver[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := r.Next()
			switch {
			case err == nil:
				if !yield(v, nil) {
					r.Cancel()
					return
				}
			case err == io.EOF || errors.Is(err, ErrCancelled):
				return
			default:
				yield(v, err)
				return
			}
		}
	}
}
