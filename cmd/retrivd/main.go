// Package main provides the entry point for the retrivd bridge.
package main

import (
	"os"

	"github.com/retrivd/retrivd/cmd/retrivd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
