package jsonl

import (
	"bytes"

	"github.com/signatory-io/jsonlines/codec"
)

// Scanner splits decoded text into lines and parses every complete line as a
// JSON value of type T. It owns its buffer and is not safe for concurrent use.
type Scanner[T any] struct {
	codec codec.Codec
	buf   []byte

	// Length of the buf prefix known to contain no line feed
	scanned int

	// Number of lines extracted so far
	line int
	err  error
}

func NewScanner[T any](c codec.Codec) *Scanner[T] {
	if c == nil {
		c = codec.JSON{}
	}
	return &Scanner[T]{codec: c}
}

// Append adds text to the buffer and calls yield for every complete line in
// arrival order. It stops at the first line that is not valid JSON and
// returns a *DecodeError. The error is terminal: later calls return it again
// without consuming any input.
func (s *Scanner[T]) Append(text []byte, yield func(T)) error {
	if s.err != nil {
		return s.err
	}
	s.buf = append(s.buf, text...)

	start := 0
	for {
		i := bytes.IndexByte(s.buf[start+s.scanned:], '\n')
		if i < 0 {
			s.scanned = len(s.buf) - start
			break
		}
		end := start + s.scanned + i
		line := s.buf[start:end]
		start = end + 1
		s.scanned = 0
		s.line++

		var v T
		if err := s.codec.Unmarshal(line, &v); err != nil {
			s.err = &DecodeError{Line: s.line, Err: err}
			s.buf = nil
			s.scanned = 0
			return s.err
		}
		yield(v)
	}

	if start != 0 {
		n := copy(s.buf, s.buf[start:])
		s.buf = s.buf[:n]
	}
	return nil
}

// Buffered returns the length of the pending incomplete line
func (s *Scanner[T]) Buffered() int { return len(s.buf) }

// Lines returns the number of complete lines extracted so far
func (s *Scanner[T]) Lines() int { return s.line }

func (s *Scanner[T]) Err() error { return s.err }
