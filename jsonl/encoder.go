package jsonl

import (
	"io"

	"github.com/signatory-io/jsonlines/codec"
)

// Encoder writes records directly to an io.Writer using the same line
// encoding as a Sender, without buffering or cancellation.
type Encoder struct {
	w     io.Writer
	codec codec.Codec
}

func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	o := newOptions(opts)
	return &Encoder{w: w, codec: o.codec}
}

func (e *Encoder) Encode(v any) error {
	rec, err := encodeRecord(e.codec, v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(rec)
	return err
}
