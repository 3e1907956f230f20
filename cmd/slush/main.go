// Slush is a small POSIX-like shell. It runs scripts, code given with -c, and
// an interactive session reading commands from the terminal.
package main

import (
	"os"

	"src.slush.sh/pkg/buildinfo"
	"src.slush.sh/pkg/lsp"
	"src.slush.sh/pkg/prog"
	"src.slush.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, &lsp.Program{}, shell.Program{})))
}
