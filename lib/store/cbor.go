// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"log/slog"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/codec"
)

// DefaultShape is the shape used for new addresses when no hint is
// given: deterministic CBOR hashed with BLAKE3.
var DefaultShape = cid.Shape{Codec: cid.DagCBOR, Hash: cid.BLAKE3}

// CBOR provides Encode and Decode over lib/codec. Backends embed it to
// satisfy the encoding half of [Store].
type CBOR struct{}

// Encode encodes value with Core Deterministic Encoding.
func (CBOR) Encode(value any) ([]byte, error) {
	return codec.Marshal(value)
}

// Decode decodes CBOR data into value.
func (CBOR) Decode(data []byte, value any) error {
	return codec.Unmarshal(data, value)
}

// Addresser computes addresses for backends. A hint whose hash
// function cannot be computed is ignored in favor of Default, so a
// block written under an exotic address can still be rewritten.
type Addresser struct {
	// Default is used when no usable hint is given. Zero means
	// [DefaultShape].
	Default cid.Shape

	// Logger receives a warning when a hint is ignored. Nil discards.
	Logger *slog.Logger
}

// Address returns the address of data under hint, or under the
// default shape.
func (a Addresser) Address(data []byte, hint *cid.Shape) (cid.ID, error) {
	shape := a.Default
	if shape == (cid.Shape{}) {
		shape = DefaultShape
	}
	if hint != nil {
		if cid.Supported(hint.Hash) {
			shape = *hint
		} else if a.Logger != nil {
			a.Logger.Warn("ignoring shape hint with unsupported hash function",
				"hint", hint.String(),
				"using", shape.String(),
			)
		}
	}
	return cid.Sum(shape, data)
}
