package main

import (
	"fmt"
	"os"

	"github.com/docgraph-dev/docgraph/internal/cli"
)

var version = "0.1.0"

func main() {
	rootCmd := cli.NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
