package jsonl

import (
	"io"
	"sync/atomic"
	"time"
)

type item struct {
	Timestamp  string `json:"timestamp,omitempty"`
	LineNumber int    `json:"lineNumber"`
	Kind       string `json:"kind,omitempty"`
}

// chunkSource returns one chunk per Read call
type chunkSource struct {
	chunks [][]byte
	delay  time.Duration
	err    error // returned instead of io.EOF once chunks are exhausted
	reads  atomic.Int32
	closed atomic.Bool
}

func newChunkSource(chunks ...string) *chunkSource {
	s := chunkSource{}
	for _, c := range chunks {
		s.chunks = append(s.chunks, []byte(c))
	}
	return &s
}

func (c *chunkSource) Read(p []byte) (int, error) {
	c.reads.Add(1)
	if c.delay != 0 {
		time.Sleep(c.delay)
	}
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n == len(c.chunks[0]) {
		c.chunks = c.chunks[1:]
	} else {
		c.chunks[0] = c.chunks[0][n:]
	}
	return n, nil
}

func (c *chunkSource) Close() error {
	c.closed.Store(true)
	return nil
}

// splitAt cuts s at the given byte offsets
func splitAt(s string, offsets ...int) []string {
	var out []string
	prev := 0
	for _, o := range offsets {
		out = append(out, s[prev:o])
		prev = o
	}
	return append(out, s[prev:])
}

func collect[T any](r *Receiver[T]) ([]T, error) {
	var out []T
	for v, err := range r.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
