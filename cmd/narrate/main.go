// Package main is the entry point for the narrate CLI.
package main

import (
	"os"

	"github.com/jmylchreest/narrate/cmd/narrate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
