// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/cli"
)

func statCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:    "stat",
		Summary: "Describe a stored block",
		Description: `Print the parts of ADDRESS and the size of the block stored under
it. The file backend also reports the block's on-disk size,
compression and path.`,
		Usage: "linkstore stat ADDRESS",
		Run: func(args []string) error {
			handle, id, err := s.openAddress("stat", args)
			if err != nil {
				return err
			}
			defer handle.Close()

			data, err := s.load(handle, id)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(s.streams.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "address\t%s\n", id)
			fmt.Fprintf(tw, "codec\t%s\n", id.Codec())
			fmt.Fprintf(tw, "hash\t%s\n", id.Hash())
			fmt.Fprintf(tw, "digest\t%s\n", hex.EncodeToString(id.Digest()))
			fmt.Fprintf(tw, "size\t%d\n", len(data))
			if handle.Sealed {
				fmt.Fprintf(tw, "sealed\ttrue\n")
			}
			if handle.Files != nil {
				info, err := handle.Files.Stat(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "stored\t%d\n", info.Size)
				fmt.Fprintf(tw, "compression\t%s\n", info.Compression)
				fmt.Fprintf(tw, "path\t%s\n", info.Path)
			}
			return tw.Flush()
		},
	}
}
