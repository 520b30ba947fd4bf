// Package main is the entry point for the ofsd CLI.
package main

import (
	"os"

	"github.com/ofsd-io/ofsd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
