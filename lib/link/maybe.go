// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

import (
	"fmt"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/codec"
)

// MaybeLink is either an inline value of type T or the address of one.
// It encodes as whichever it holds, and decodes by looking at the
// shape of the encoded item: tag 42 is an address, everything else is
// a value.
type MaybeLink[T any] struct {
	value T
	id    cid.ID
}

// Value returns a MaybeLink holding value inline.
func Value[T any](value T) MaybeLink[T] {
	return MaybeLink[T]{value: value}
}

// LinkTo returns a MaybeLink holding an address.
func LinkTo[T any](id cid.ID) MaybeLink[T] {
	return MaybeLink[T]{id: id}
}

// IsLink reports whether m holds an address.
func (m MaybeLink[T]) IsLink() bool {
	return m.id.Defined()
}

// Get returns the inline value. It reports false if m holds an
// address.
func (m MaybeLink[T]) Get() (T, bool) {
	if m.IsLink() {
		var zero T
		return zero, false
	}
	return m.value, true
}

// ID returns the address. It reports false if m holds a value.
func (m MaybeLink[T]) ID() (cid.ID, bool) {
	return m.id, m.IsLink()
}

// MarshalCBOR encodes the address as tag 42, or the value as itself.
func (m MaybeLink[T]) MarshalCBOR() ([]byte, error) {
	if m.IsLink() {
		return m.id.MarshalCBOR()
	}
	return codec.Marshal(m.value)
}

// UnmarshalCBOR decodes either shape. Failures are [*FormatError].
func (m *MaybeLink[T]) UnmarshalCBOR(data []byte) error {
	decoded, err := decodeMaybe[T](data)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// decodeMaybe branches on the head of the first item in data before
// any decoding into T:
//
//   - tag 42 is the only address shape; its content must parse as an
//     address
//   - tag 55799 (self-described CBOR) wraps without meaning; the
//     enclosed item is dispatched again
//   - integers, strings, byte strings, arrays, maps, simple values,
//     floats and every other tag are inline values of T
func decodeMaybe[T any](data []byte) (MaybeLink[T], error) {
	major, err := codec.PeekMajor(data)
	if err != nil {
		return MaybeLink[T]{}, &FormatError{Err: err}
	}

	if major == codec.MajorTag {
		var tag codec.RawTag
		if err := codec.Unmarshal(data, &tag); err != nil {
			return MaybeLink[T]{}, &FormatError{Err: err}
		}
		switch tag.Number {
		case codec.TagCID:
			id, err := cid.FromTagContent(tag.Content)
			if err != nil {
				return MaybeLink[T]{}, &FormatError{Err: err}
			}
			return LinkTo[T](id), nil
		case codec.TagSelfDescribed:
			return decodeMaybe[T](tag.Content)
		}
	}

	var value T
	if err := codec.Unmarshal(data, &value); err != nil {
		return MaybeLink[T]{}, &FormatError{Err: fmt.Errorf("decoding inline %s: %w", major, err)}
	}
	return Value(value), nil
}
