// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/cli"
	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/codec"
)

func putCommand(s *session) *cli.Command {
	var codecName, hashName string
	return &cli.Command{
		Name:    "put",
		Summary: "Store a block read from stdin",
		Description: `Read one block from stdin, store it, and print its address.

The codec defaults to store.codec from the configuration. dag-cbor
input must be exactly one well-formed CBOR item; raw input is stored
as-is. Storing the same bytes twice prints the same address.`,
		Usage: "linkstore put [--codec raw|dag-cbor] [--hash blake3|sha2-256]",
		Examples: []cli.Example{
			{
				Description: "Store a file as an opaque block",
				Command:     "linkstore put --codec raw < notes.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("put", pflag.ContinueOnError)
			flagSet.StringVar(&codecName, "codec", "", "codec of the address (default store.codec)")
			flagSet.StringVar(&hashName, "hash", "", "hash function of the address (default store.hash)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("put reads stdin and takes no arguments, got %q", args[0])
			}
			data, err := io.ReadAll(s.streams.Stdin)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			handle, _, err := s.open()
			if err != nil {
				return err
			}
			defer handle.Close()

			shape, err := resolveShape(handle.Shape, codecName, hashName)
			if err != nil {
				return err
			}
			if shape.Codec == cid.DagCBOR {
				if err := codec.Wellformed(data); err != nil {
					return fmt.Errorf("input is not a single well-formed CBOR item: %w", err)
				}
			}

			id, err := handle.StoreBytes(data, &shape)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.streams.Stdout, id)
			return nil
		},
	}
}

// resolveShape applies the --codec and --hash overrides to the
// configured shape.
func resolveShape(configured cid.Shape, codecName, hashName string) (cid.Shape, error) {
	shape := configured
	if codecName != "" {
		parsed, err := cid.ParseCodec(codecName)
		if err != nil {
			return cid.Shape{}, err
		}
		shape.Codec = parsed
	}
	if hashName != "" {
		parsed, err := cid.ParseHashFunction(hashName)
		if err != nil {
			return cid.Shape{}, err
		}
		shape.Hash = parsed
	}
	return shape, nil
}
