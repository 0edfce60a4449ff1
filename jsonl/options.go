package jsonl

import (
	"github.com/signatory-io/jsonlines/codec"
	"github.com/signatory-io/jsonlines/logger"
)

const (
	DefaultReadSize    = 32 * 1024
	DefaultBufferLimit = 64 * 1024
)

type options struct {
	codec       codec.Codec
	log         logger.Logger
	readSize    int
	bufferLimit int
}

type Option func(*options)

// WithCodec replaces the default goccy/go-json based codec
func WithCodec(c codec.Codec) Option { return func(o *options) { o.codec = c } }

func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// WithReadSize sets the size of the chunks requested from the byte source
func WithReadSize(n int) Option { return func(o *options) { o.readSize = n } }

// WithBufferLimit sets the amount of encoded bytes a Sender holds before
// Write blocks. Zero or a negative value disables the limit.
func WithBufferLimit(n int) Option { return func(o *options) { o.bufferLimit = n } }

func newOptions(opts []Option) *options {
	o := options{
		codec:       codec.JSON{},
		log:         logger.Nop(),
		readSize:    DefaultReadSize,
		bufferLimit: DefaultBufferLimit,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.readSize <= 0 {
		o.readSize = DefaultReadSize
	}
	return &o
}
