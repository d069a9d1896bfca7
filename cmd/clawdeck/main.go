// Package main is the entry point for the clawdeck CLI.
package main

import (
	"os"

	"github.com/ClawDeck/ClawDeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
