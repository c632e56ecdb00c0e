// Command binder manages typed records and the bindings between them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/binder/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
