package jsonlcli

import (
	"io"
	"os"

	"github.com/signatory-io/jsonlines/core"
	"github.com/signatory-io/jsonlines/logger"
	"github.com/spf13/cobra"
)

type env struct {
	conf   core.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// load resolves the effective configuration for cmd and returns a logger for it
func (e *env) load(cmd *cobra.Command) (logger.Logger, error) {
	if err := e.conf.FromCmdline(true, cmd.Flags()); err != nil {
		return nil, err
	}
	return logger.NewLogrus(e.conf.LogLevel, e.stderr), nil
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := cobra.Command{
		Use:          "jsonl [options]",
		Short:        "JSON Lines streaming tool",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	e.conf.Default()
	e.conf.RegisterFlags(cmd.PersistentFlags(), &cmd)

	cmd.AddCommand(newServeCommand(&e))
	cmd.AddCommand(newFetchCommand(&e))
	cmd.AddCommand(newConvertCommand(&e))
	cmd.AddCommand(newConfigCommand(&e))

	return &cmd
}
