package jsonl

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by writes on a closed Writer
	ErrClosed = errors.New("jsonl: stream closed")
	// ErrCancelled is returned once the consumer has cancelled the stream
	ErrCancelled = errors.New("jsonl: stream cancelled")
	// ErrLineFeed is returned when a value encodes to text containing a raw line feed
	ErrLineFeed = errors.New("jsonl: encoded value contains a line feed")
)

// TransportError means the underlying byte source failed to produce the next chunk
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "jsonl: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a complete line is not valid JSON. Line is 1-based.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("jsonl: line %d: %v", e.Line, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
