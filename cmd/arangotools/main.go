// Package main is the entry point for the arangotools CLI.
package main

import (
	"os"

	"github.com/distributhor/arangotools/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
