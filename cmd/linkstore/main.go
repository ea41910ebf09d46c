// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command linkstore stores and inspects content-addressed blocks.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that report their own failure (like get of a
		// missing block) return an ExitError. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root(commands.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}).Execute(os.Args[1:])
}
