// Package main implements the go-pygraph CLI (pyg).
// It provides commands for extracting class and call graphs from Python
// sources, caching them and drawing them.
package main

import (
	"os"

	"github.com/l3aro/go-pygraph/cmd/pyg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`pyg version {{.Version}}
`)
	commands.RootCmd.Version = version

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
