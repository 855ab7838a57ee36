// Command linecheck verifies a tool's diagnostics against the directives
// embedded in a fixture file.
package main

import (
	"os"

	"github.com/roach88/linecheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
