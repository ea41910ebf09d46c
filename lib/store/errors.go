// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/linkstore/lib/cid"
)

var (
	// ErrNotFound is returned by LoadBytes for unknown addresses.
	ErrNotFound = errors.New("block not found")

	// ErrNoStore is returned when a link is used before it has been
	// bound to a store.
	ErrNoStore = errors.New("link has no store")

	// ErrCorrupt is returned by backends that verify digests when
	// stored bytes no longer hash to their address.
	ErrCorrupt = errors.New("block is corrupt")
)

// Error is a backend failure surfaced to a link or store caller. Op
// names the failed step (encode, decode, store, load); ID is the
// address involved, when there is one.
type Error struct {
	Op  string
	ID  cid.ID
	Err error
}

func (e *Error) Error() string {
	if e.ID.Defined() {
		return fmt.Sprintf("store: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an [*Error] for op and id. Nil stays nil, and an
// error chain that already contains an *Error is returned unchanged
// so nested loads keep the innermost address.
func Wrap(op string, id cid.ID, err error) error {
	if err == nil {
		return nil
	}
	var storeError *Error
	if errors.As(err, &storeError) {
		return err
	}
	return &Error{Op: op, ID: id, Err: err}
}
