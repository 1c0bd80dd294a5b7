// Package main is the ragchef command line: ingestion, the interactive
// recipe prompt, one-shot generation, the JSON API and the recipe MCP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
