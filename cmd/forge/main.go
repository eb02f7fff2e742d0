// Command forge is the entry point for the forge build tool (SPEC_FULL.md
// §6): it just hands os.Args to the cli package and exits with whatever
// code the run produced.
package main

import (
	"os"

	"github.com/forgebuild/forge/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
