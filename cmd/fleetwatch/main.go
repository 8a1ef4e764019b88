// Package main is the entry point for the fleetwatch CLI.
package main

import (
	"os"

	"github.com/fleetstack-labs/fleetwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
