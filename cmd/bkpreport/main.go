// Package main is the entry point for the bkpreport CLI and HTTP API.
package main

import (
	"os"

	"bkpreport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
