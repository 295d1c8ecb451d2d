// Package main is the entry point for the rapid CLI.
package main

import (
	"os"

	"github.com/SkylarKelty/Rapid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
