// ABOUTME: Entry point for the library CLI
// ABOUTME: Opens the interactive catalog client or runs a scripted subcommand

package main

import (
	"fmt"
	"os"

	"github.com/minilibrary/library/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
