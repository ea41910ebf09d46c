// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/linkstore/cmd/linkstore/cli"
	"github.com/bureau-foundation/linkstore/lib/backend"
	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// exitNotFound is the exit status for an address with no stored block.
const exitNotFound = 2

func getCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:    "get",
		Summary: "Write a stored block to stdout",
		Description: `Load the block at ADDRESS, verify it against the address, and
write its bytes to stdout unchanged.

Exits with status 2 if no block is stored under ADDRESS.`,
		Usage: "linkstore get ADDRESS",
		Examples: []cli.Example{
			{
				Description: "Copy a block to a file",
				Command:     "linkstore get bafyr4i... > block.cbor",
			},
		},
		Run: func(args []string) error {
			handle, id, err := s.openAddress("get", args)
			if err != nil {
				return err
			}
			defer handle.Close()

			data, err := s.load(handle, id)
			if err != nil {
				return err
			}
			_, err = s.streams.Stdout.Write(data)
			return err
		},
	}
}

// openAddress parses the single ADDRESS argument and opens the store.
func (s *session) openAddress(name string, args []string) (*backend.Handle, cid.ID, error) {
	if len(args) != 1 {
		return nil, cid.Undef, fmt.Errorf("%s takes exactly one ADDRESS argument, got %d", name, len(args))
	}
	id, err := cid.Parse(args[0])
	if err != nil {
		return nil, cid.Undef, fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	handle, _, err := s.open()
	if err != nil {
		return nil, cid.Undef, err
	}
	return handle, id, nil
}

// load reads the block at id. A missing block is reported on stderr
// and returned as an exit status.
func (s *session) load(handle *backend.Handle, id cid.ID) ([]byte, error) {
	data, err := handle.LoadBytes(id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(s.streams.Stderr, "linkstore: no block stored under %s\n", id)
		return nil, &cli.ExitError{Code: exitNotFound}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
