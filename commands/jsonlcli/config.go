package jsonlcli

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/signatory-io/jsonlines/core"
	"github.com/signatory-io/jsonlines/utils"
	"github.com/spf13/cobra"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := cobra.Command{
		Use:     "config",
		Aliases: []string{"conf"},
		Short:   "Configuration commands",
	}
	cmd.AddCommand(newConfigInitCommand(e))
	cmd.AddCommand(newConfigShowCommand(e))
	return &cmd
}

func newConfigInitCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new configuration file with the provided parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if err := e.conf.FromCmdline(false, f); err != nil {
				return err
			}
			buf, err := yaml.Marshal(&e.conf)
			if err != nil {
				return err
			}
			confPath, err := f.GetString("config-file")
			if err != nil {
				panic(err)
			}
			confPath = core.GetPath(confPath, e.conf.BasePath)
			if err := utils.AtomicWrite(confPath, buf, 0600); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "Configuration file %s is successfully created\n", confPath)
			return nil
		},
	}
}

func newConfigShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.load(cmd); err != nil {
				return err
			}
			buf, err := yaml.Marshal(&e.conf)
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(buf)
			return err
		},
	}
}
