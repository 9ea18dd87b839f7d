// lintpipe lints CoffeeScript sources through a build-pipeline adapter.
// Options come from an options file or per-file config discovery, results
// go to one or more reporters, and a fail policy decides the exit code.
package main

import (
	"fmt"
	"os"

	"github.com/corey/lintpipe/cmd/lintpipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
