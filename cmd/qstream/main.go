// Package main is the entry point for the qstream CLI.
//
// Usage:
//
//	qstream [flags] <command> [subcommand] [args]
//
// Commands:
//
//	pipe       - Copy stdin to stdout through a QueueStream
//	bench      - Stress a QueueStream with concurrent writers and verify delivery
//	config     - Configuration management (view, set, path)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/solarisin/core/cmd/qstream/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
