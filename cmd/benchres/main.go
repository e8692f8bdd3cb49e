// Package main runs the benchres CLI.
package main

import (
	"fmt"
	"os"

	"benchcore/internal/cli"
	"benchcore/pkg/procedure"
	"benchcore/plugins/sweep"
)

func main() {
	os.Exit(run())
}

func run() int {
	reg := procedure.NewRegistry()
	if err := sweep.Register(reg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cli.NewRootCommand(reg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
