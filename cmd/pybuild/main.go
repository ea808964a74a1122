// Command pybuild compiles and catalogs the Python build targets declared
// in BUILD.cue and BUILD.yaml files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pybuild/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Subcommands print their own errors; only ExitError carries a code.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
