package main

import (
	"os"

	"ledkb-setup/cmd" // CLI definition and exit-code handling
)

// main delegates to cmd.Execute, which parses flags, runs the install or
// uninstall workflow and maps any fatal error to exit code 1.
func main() {
	os.Exit(cmd.Execute())
}
