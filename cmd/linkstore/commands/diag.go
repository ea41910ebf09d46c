// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/cli"
	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/codec"
)

func diagCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:    "diag",
		Summary: "Print a dag-cbor block in diagnostic notation",
		Description: `Load the dag-cbor block at ADDRESS and write RFC 8949 diagnostic
notation to stdout, one line per top-level item.

Links appear as tag 42 around a byte string whose first byte is 0x00:

  {"name": "leaf", "next": 42(h'0001711e20...')}`,
		Usage: "linkstore diag ADDRESS",
		Run: func(args []string) error {
			handle, id, err := s.openAddress("diag", args)
			if err != nil {
				return err
			}
			defer handle.Close()

			if id.Codec() != cid.DagCBOR {
				return fmt.Errorf("%s is a %s block; use get to read it", id, id.Codec())
			}
			data, err := s.load(handle, id)
			if err != nil {
				return err
			}
			return diagnose(data, s.streams.Stdout)
		},
	}
}

// diagnose writes the diagnostic notation of each CBOR item in data
// to w.
func diagnose(data []byte, w io.Writer) error {
	if len(data) == 0 {
		return fmt.Errorf("block is empty")
	}
	remaining := data
	for len(remaining) > 0 {
		notation, rest, err := codec.DiagnoseFirst(remaining)
		if err != nil {
			offset := len(data) - len(remaining)
			return fmt.Errorf("diagnose CBOR at byte %d: %w", offset, err)
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}
