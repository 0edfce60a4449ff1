package jsonlcli

import (
	"bufio"
	"io"
	"os"

	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newConvertCommand(e *env) *cobra.Command {
	var (
		format string
		color  string
	)

	cmd := cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a JSON Lines file or standard input to another format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := e.load(cmd)
			if err != nil {
				return err
			}

			var src io.Reader
			if len(args) != 0 && args[0] != "-" {
				fd, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer fd.Close()
				src = fd
				log = log.With("file", args[0])
			} else {
				if f, ok := e.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					log.Info("Reading records from the terminal, press Ctrl+D to finish")
				}
				src = e.stdin
			}

			out, useColor, err := colorOutput(color, e.stdout)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(out)
			p, err := newPrinter(w, format, useColor)
			if err != nil {
				return err
			}

			r := jsonl.NewReceiver[any](src, e.conf.StreamOptions(log)...)
			var convErr error
			for v, err := range r.All() {
				if err != nil {
					convErr = err
					break
				}
				if convErr = p.Print(v); convErr != nil {
					r.Cancel()
					break
				}
			}
			if err := w.Flush(); err != nil && convErr == nil {
				convErr = err
			}
			return convErr
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "to", "t", "json", formatHelp)
	f.StringVar(&color, "color", "auto", "Colorize JSON output: [auto, always, never]")

	return &cmd
}
