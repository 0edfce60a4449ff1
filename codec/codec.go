// Package codec provides the value codecs used to encode and decode single
// JSON Lines records.
package codec

import (
	stdjson "encoding/json"

	"github.com/goccy/go-json"
)

type Codec interface {
	Unmarshal(data []byte, v any) error
	Marshal(v any) ([]byte, error)
	MediaType() string
}

// JSON is the default codec backed by goccy/go-json. Input is checked with
// encoding/json first as goccy accepts leading zeros, trailing decimal points
// and raw control characters in strings.
type JSON struct{}

func (JSON) Unmarshal(data []byte, v any) error {
	if !stdjson.Valid(data) {
		var raw stdjson.RawMessage
		// Reports the *json.SyntaxError
		return stdjson.Unmarshal(data, &raw)
	}
	return json.Unmarshal(data, v)
}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (JSON) MediaType() string             { return "application/json" }

// StdJSON uses encoding/json from the standard library. Use it when values
// rely on encoding/json specific behaviour.
type StdJSON struct{}

func (StdJSON) Unmarshal(data []byte, v any) error { return stdjson.Unmarshal(data, v) }
func (StdJSON) Marshal(v any) ([]byte, error)      { return stdjson.Marshal(v) }
func (StdJSON) MediaType() string                  { return "application/json" }

var (
	_ Codec = JSON{}
	_ Codec = StdJSON{}
)
