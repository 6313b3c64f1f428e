// ABOUTME: Entry point for the wp-capacity CLI
// ABOUTME: Delegates to the cobra command tree

package main

import (
	"os"

	"github.com/Martel-IT/wp-nixos/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(2)
	}
}
