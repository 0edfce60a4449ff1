package main

import (
	"fmt"
	"os"

	"github.com/signatory-io/jsonlines/commands/jsonlcli"
)

func main() {
	cmd := jsonlcli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
