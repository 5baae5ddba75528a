// Package main is the entry point for the provsync CLI.
package main

import (
	"os"

	"github.com/provanalytics/provsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
