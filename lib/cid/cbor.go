// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cid

import (
	"fmt"

	"github.com/bureau-foundation/linkstore/lib/codec"
)

// identityPrefix is the multibase identity prefix that DAG-CBOR puts
// in front of the binary address inside tag 42.
const identityPrefix = 0x00

// MarshalCBOR encodes id as tag 42 wrapping the byte string
// 0x00 ‖ [ID.Bytes].
func (id ID) MarshalCBOR() ([]byte, error) {
	if !id.Defined() {
		return nil, ErrUndefined
	}
	content := append([]byte{identityPrefix}, id.Bytes()...)
	return codec.Marshal(codec.Tag{Number: codec.TagCID, Content: content})
}

// UnmarshalCBOR decodes tag 42. Any other CBOR item is an error.
func (id *ID) UnmarshalCBOR(data []byte) error {
	var raw codec.RawTag
	if err := codec.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: expected tag %d: %v", ErrMalformed, codec.TagCID, err)
	}
	if raw.Number != codec.TagCID {
		return fmt.Errorf("%w: expected tag %d, got tag %d", ErrMalformed, codec.TagCID, raw.Number)
	}
	parsed, err := FromTagContent(raw.Content)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FromTagContent parses the encoded content of a tag 42 item: a CBOR
// byte string holding the identity prefix and the binary address.
func FromTagContent(content []byte) (ID, error) {
	major, err := codec.PeekMajor(content)
	if err != nil {
		return Undef, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if major != codec.MajorByteString {
		return Undef, fmt.Errorf("%w: tag %d content is a %s, want a byte string", ErrMalformed, codec.TagCID, major)
	}

	var raw []byte
	if err := codec.Unmarshal(content, &raw); err != nil {
		return Undef, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) == 0 || raw[0] != identityPrefix {
		return Undef, fmt.Errorf("%w: missing multibase identity prefix", ErrMalformed)
	}
	return Cast(raw[1:])
}
