// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the linkstore command tree.
//
// Every command that touches blocks opens the store described by the
// active configuration: the file named by --config, else the file
// named by LINKSTORE_CONFIG, else the built-in defaults.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/cli"
	"github.com/bureau-foundation/linkstore/lib/backend"
	"github.com/bureau-foundation/linkstore/lib/config"
	"github.com/bureau-foundation/linkstore/lib/version"
)

// IO holds the streams commands read from and write to.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// session carries the global flags to the subcommands.
type session struct {
	streams    IO
	configPath string
	logLevel   string
}

// Root builds the linkstore command tree.
func Root(streams IO) *cli.Command {
	s := &session{streams: streams}
	return &cli.Command{
		Name: "linkstore",
		Description: `linkstore: a content-addressed block store.

Blocks are addressed by the hash of their bytes. dag-cbor blocks may
link to other blocks with CBOR tag 42, forming trees that are stored
and loaded one block at a time.`,
		HelpOutput: streams.Stderr,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("linkstore", pflag.ContinueOnError)
			flagSet.StringVar(&s.configPath, "config", "", "configuration file (default $"+config.EnvVar+")")
			flagSet.StringVar(&s.logLevel, "log-level", "", "override log.level: debug, info, warn or error")
			return flagSet
		},
		Subcommands: []*cli.Command{
			putCommand(s),
			getCommand(s),
			diagCommand(s),
			statCommand(s),
			configCommand(s),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if len(args) > 0 {
						return fmt.Errorf("version takes no arguments, got %q", args[0])
					}
					fmt.Fprintf(streams.Stdout, "linkstore %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// loadConfig resolves the active configuration.
func (s *session) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case s.configPath != "":
		cfg, err = config.LoadFile(s.configPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if s.logLevel != "" {
		cfg.Log.Level = s.logLevel
	}
	return cfg, nil
}

// open loads the configuration and opens its store. The caller closes
// the returned handle.
func (s *session) open() (*backend.Handle, *slog.Logger, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	level, err := cli.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(s.streams.Stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	handle, err := backend.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return handle, logger, nil
}

func configCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Print the effective configuration",
		Description: `Print the configuration linkstore would use, as YAML, after
defaults, the config file, variable expansion and flag overrides are
applied. The configuration is validated but no store is opened.`,
		Usage: "linkstore config",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("config takes no arguments, got %q", args[0])
			}
			cfg, err := s.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			encoder := yaml.NewEncoder(s.streams.Stdout)
			encoder.SetIndent(2)
			if err := encoder.Encode(cfg); err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			return encoder.Close()
		},
	}
}
