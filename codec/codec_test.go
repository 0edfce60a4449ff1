package codec

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecs(t *testing.T) {
	type record struct {
		LineNumber int    `json:"lineNumber"`
		Kind       string `json:"kind,omitempty"`
	}

	for name, c := range map[string]Codec{"goccy": JSON{}, "std": StdJSON{}} {
		t.Run(name, func(t *testing.T) {
			buf, err := c.Marshal(&record{LineNumber: 1, Kind: "start"})
			require.NoError(t, err)
			require.Equal(t, `{"lineNumber":1,"kind":"start"}`, string(buf))

			var out record
			require.NoError(t, c.Unmarshal(buf, &out))
			require.Equal(t, record{LineNumber: 1, Kind: "start"}, out)

			var v any
			require.Error(t, c.Unmarshal([]byte("{broken json}"), &v))
			require.Error(t, c.Unmarshal([]byte(""), &v))
		})
	}
}

func TestJSONRejectsInvalid(t *testing.T) {
	type record struct {
		A    float64 `json:"a"`
		Kind string  `json:"kind"`
	}
	for _, input := range []string{
		"01",
		"[01]",
		`{"a":01}`,
		"1.",
		`{"a":1.}`,
		"\"a\x01b\"",
		"{\"kind\":\"a\tb\"}",
		"{broken json}",
		"",
	} {
		t.Run(input, func(t *testing.T) {
			var v any
			var syntax *stdjson.SyntaxError
			require.ErrorAs(t, JSON{}.Unmarshal([]byte(input), &v), &syntax)
			var r record
			require.Error(t, JSON{}.Unmarshal([]byte(input), &r))
		})
	}

	var v any
	require.NoError(t, JSON{}.Unmarshal([]byte(" {\"a\":[0, 1.5e3, -0.0]} \r"), &v))
	require.Equal(t, map[string]any{"a": []any{0.0, 1500.0, -0.0}}, v)
}
