package jsonlcli

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/signatory-io/jsonlines/conn"
	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/spf13/cobra"
)

func newFetchCommand(e *env) *cobra.Command {
	var (
		method string
		format string
		color  string
	)

	cmd := cobra.Command{
		Use:   "fetch [url]",
		Short: "Receive a record stream and print records as they arrive",
		Long:  "Receive a record stream from an http(s):// or tcp:// endpoint. The configured endpoint is used if no URL is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := e.load(cmd)
			if err != nil {
				return err
			}
			endpoint := e.conf.Endpoint
			if len(args) != 0 {
				endpoint = args[0]
			}
			out, useColor, err := colorOutput(color, e.stdout)
			if err != nil {
				return err
			}
			p, err := newPrinter(out, format, useColor)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			u, err := url.Parse(endpoint)
			if err != nil {
				return err
			}
			opts := e.conf.StreamOptions(log.With("endpoint", endpoint))

			var records iter.Seq2[any, error]
			switch u.Scheme {
			case "http", "https":
				req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), endpoint, nil)
				if err != nil {
					return err
				}
				r, err := jsonl.Do[any](http.DefaultClient, req, opts...)
				if err != nil {
					return err
				}
				records = r.All()
			case "tcp":
				c, err := conn.Dial[any](ctx, "tcp", u.Host, opts...)
				if err != nil {
					return err
				}
				defer c.Close()
				stopClose := context.AfterFunc(ctx, func() { c.Close() })
				defer stopClose()
				records = c.Messages()
			default:
				return fmt.Errorf("unsupported endpoint scheme: %s", u.Scheme)
			}

			var n int
			for v, err := range records {
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					return err
				}
				if err := p.Print(v); err != nil {
					return err
				}
				n++
			}
			if ctx.Err() != nil {
				log.Infof("Interrupted after %d records", n)
				return nil
			}
			log.Debugf("%d records received", n)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&method, "method", "X", http.MethodGet, "HTTP request method")
	f.StringVarP(&format, "to", "t", "jsonl", formatHelp)
	f.StringVar(&color, "color", "auto", "Colorize JSON output: [auto, always, never]")

	return &cmd
}
