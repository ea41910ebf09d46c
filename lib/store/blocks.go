// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "github.com/bureau-foundation/linkstore/lib/cid"

// Blocks is keyed block storage beneath a [Store]: the caller chooses
// the key, and the bytes under it need not hash to it. Backends
// implement StoreBytes and LoadBytes on top of their Blocks methods;
// sealedstore uses Blocks directly to keep ciphertext under the
// address of the plaintext.
type Blocks interface {
	// PutBlock stores data under id. If id is already present the
	// existing block is kept.
	PutBlock(id cid.ID, data []byte) error

	// GetBlock returns the block stored under id, or an error
	// matching [ErrNotFound].
	GetBlock(id cid.ID) ([]byte, error)
}
