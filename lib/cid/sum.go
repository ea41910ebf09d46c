// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cid

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

var (
	// ErrUnsupportedHash is returned by [Sum] and [ID.Verify] for hash
	// functions this package cannot compute.
	ErrUnsupportedHash = errors.New("cid: unsupported hash function")

	// ErrDigestMismatch is returned by [ID.Verify] when data does not
	// hash to the address.
	ErrDigestMismatch = errors.New("cid: digest mismatch")
)

// Supported reports whether [Sum] can compute hash.
func Supported(hash HashFunction) bool {
	switch hash {
	case SHA2_256, BLAKE3:
		return true
	default:
		return false
	}
}

// Sum computes the address of data under shape.
func Sum(shape Shape, data []byte) (ID, error) {
	var digest [32]byte
	switch shape.Hash {
	case BLAKE3:
		digest = blake3.Sum256(data)
	case SHA2_256:
		digest = sha256.Sum256(data)
	default:
		return Undef, fmt.Errorf("%w: %s", ErrUnsupportedHash, shape.Hash)
	}
	return ID{codec: shape.Codec, hash: shape.Hash, digest: string(digest[:])}, nil
}

// Verify checks that data hashes to id.
func (id ID) Verify(data []byte) error {
	recomputed, err := Sum(id.Shape(), data)
	if err != nil {
		return err
	}
	if recomputed != id {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, id)
	}
	return nil
}
