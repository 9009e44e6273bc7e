// Command qscope inspects query contexts: their foreign key scope and the
// SQL they compile to.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qscope/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
