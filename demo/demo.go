// Package demo serves sample JSON Lines feeds over HTTP and raw TCP. It is
// used by the jsonl serve command and as a fixture in integration tests.
package demo

import (
	"context"
	"time"

	"github.com/signatory-io/jsonlines/jsonl"
)

const (
	KindStart = "start"
	KindEnd   = "end"
)

type Record struct {
	Timestamp  string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	LineNumber int    `json:"lineNumber" yaml:"lineNumber"`
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

type Config struct {
	// Interval between two records of a feed
	Interval time.Duration `yaml:"interval"`
	// Count is the number of records between the start and end records
	Count int `yaml:"count"`
}

const (
	DefaultInterval = 120 * time.Millisecond
	DefaultCount    = 5
)

func (c *Config) Default() {
	c.Interval = DefaultInterval
	c.Count = DefaultCount
}

func newRecord(n int, kind string) *Record {
	return &Record{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		LineNumber: n,
		Kind:       kind,
	}
}

// Produce writes a start record, conf.Count records at conf.Interval and an
// end record, then closes w. It returns early with jsonl.ErrCancelled if the
// consumer goes away or with the context error.
func Produce(ctx context.Context, w *jsonl.Writer, conf *Config) error {
	lineNumber := 0
	if err := w.Write(newRecord(lineNumber, KindStart)); err != nil {
		return err
	}

	interval := conf.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i <= conf.Count; i++ {
		select {
		case <-ctx.Done():
			w.CloseWithError(ctx.Err())
			return ctx.Err()
		case <-w.Cancelled():
			return jsonl.ErrCancelled
		case <-ticker.C:
		}
		lineNumber++
		kind := ""
		if i == conf.Count {
			kind = KindEnd
		}
		if err := w.Write(newRecord(lineNumber, kind)); err != nil {
			return err
		}
	}
	return w.Close()
}
