// Package main is the entry point for the caffeine tracker
package main

import (
	"os"

	"github.com/baely/caffeine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
