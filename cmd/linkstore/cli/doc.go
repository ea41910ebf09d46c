// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the linkstore binary: a
// tree of [Command] values with pflag-based flags, structured help,
// and typo suggestions for unknown commands and flags.
//
// A command with subcommands may define global flags, which are
// parsed before the subcommand name:
//
//	linkstore --config store.yaml get bafy...
//
// [NewLogger] builds the slog logger commands share, and [ExitError]
// lets a command choose its exit status after printing its own
// diagnostics.
package cli
