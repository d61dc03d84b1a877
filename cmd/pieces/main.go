// Package main provides the pieces CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jeason0813/dblinq2007/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
