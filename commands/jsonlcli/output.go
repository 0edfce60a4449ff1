package jsonlcli

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/signatory-io/jsonlines/jsonl"
)

const formatHelp = "Output format: [jsonl, json, yaml, cbor]"

// printer writes decoded records in one of the supported output formats.
// cbor output is a CBOR sequence (RFC 8742), yaml output is a multi document
// stream.
type printer struct {
	w      io.Writer
	format string
	color  bool
	enc    *jsonl.Encoder
	n      int
}

func newPrinter(w io.Writer, format string, color bool) (*printer, error) {
	switch format {
	case "jsonl", "json", "yaml", "cbor":
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
	return &printer{
		w:      w,
		format: format,
		color:  color,
		enc:    jsonl.NewEncoder(w),
	}, nil
}

func (p *printer) Print(v any) (err error) {
	defer func() { p.n++ }()

	var buf []byte
	switch p.format {
	case "jsonl":
		return p.enc.Encode(v)
	case "json":
		if p.color {
			buf, err = json.MarshalIndentWithOption(v, "", "  ", json.Colorize(json.DefaultColorScheme))
		} else {
			buf, err = json.MarshalIndent(v, "", "  ")
		}
		buf = append(buf, '\n')
	case "yaml":
		if buf, err = yaml.Marshal(v); err == nil && p.n != 0 {
			buf = append([]byte("---\n"), buf...)
		}
	case "cbor":
		buf, err = cbor.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = p.w.Write(buf)
	return err
}

// colorOutput decides whether colour is used and wraps stdout accordingly
func colorOutput(mode string, stdout io.Writer) (io.Writer, bool, error) {
	var color bool
	switch mode {
	case "always":
		color = true
	case "never":
	case "auto":
		if f, ok := stdout.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	default:
		return nil, false, fmt.Errorf("unknown color mode: %s", mode)
	}
	if f, ok := stdout.(*os.File); ok && color {
		return colorable.NewColorable(f), true, nil
	}
	return stdout, color, nil
}
