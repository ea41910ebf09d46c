// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cid

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Codec is the content-type tag of an address: it says how the
// addressed bytes are encoded. Values follow the multicodec table.
type Codec uint64

const (
	// Raw marks opaque bytes with no further structure.
	Raw Codec = 0x55

	// DagCBOR marks a deterministic CBOR block that may contain links
	// (tag 42).
	DagCBOR Codec = 0x71
)

// String returns the multicodec name of the codec.
func (c Codec) String() string {
	switch c {
	case Raw:
		return "raw"
	case DagCBOR:
		return "dag-cbor"
	default:
		return fmt.Sprintf("codec(0x%x)", uint64(c))
	}
}

// ParseCodec parses a codec from its multicodec name.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "raw":
		return Raw, nil
	case "dag-cbor":
		return DagCBOR, nil
	default:
		return 0, fmt.Errorf("unknown codec: %q", name)
	}
}

// HashFunction is the hash-function tag of an address. Values follow
// the multihash table.
type HashFunction uint64

const (
	SHA2_256 HashFunction = 0x12
	BLAKE3   HashFunction = 0x1e
)

// String returns the multihash name of the hash function.
func (h HashFunction) String() string {
	switch h {
	case SHA2_256:
		return "sha2-256"
	case BLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("hash(0x%x)", uint64(h))
	}
}

// ParseHashFunction parses a hash function from its multihash name.
func ParseHashFunction(name string) (HashFunction, error) {
	switch name {
	case "sha2-256":
		return SHA2_256, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return 0, fmt.Errorf("unknown hash function: %q", name)
	}
}

// Shape is an address without its digest: the codec and hash function
// that were used to derive it. A backend given a Shape as a hint
// derives a new address the same way.
type Shape struct {
	Codec Codec
	Hash  HashFunction
}

// String returns "codec/hash", e.g. "dag-cbor/blake3".
func (s Shape) String() string {
	return s.Codec.String() + "/" + s.Hash.String()
}

// ID is a content address. IDs are immutable and comparable, so they
// can be used with == and as map keys. The zero ID is undefined and
// cannot be encoded.
type ID struct {
	codec  Codec
	hash   HashFunction
	digest string
}

// version is the only address version produced or accepted.
const version = 1

// Undef is the zero ID.
var Undef ID

var (
	// ErrUndefined is returned when encoding the zero ID.
	ErrUndefined = errors.New("cid: undefined address")

	// ErrMalformed is wrapped by every parse failure.
	ErrMalformed = errors.New("cid: malformed address")
)

// New builds an ID from a shape and a digest. The digest is copied.
func New(shape Shape, digest []byte) (ID, error) {
	if len(digest) == 0 {
		return Undef, fmt.Errorf("%w: empty digest", ErrMalformed)
	}
	return ID{codec: shape.Codec, hash: shape.Hash, digest: string(digest)}, nil
}

// Defined reports whether id is not the zero ID.
func (id ID) Defined() bool {
	return id.digest != ""
}

// Codec returns the content-type tag.
func (id ID) Codec() Codec {
	return id.codec
}

// Hash returns the hash-function tag.
func (id ID) Hash() HashFunction {
	return id.hash
}

// Shape returns the codec and hash function of id, dropping the digest.
func (id ID) Shape() Shape {
	return Shape{Codec: id.codec, Hash: id.hash}
}

// Digest returns a copy of the digest bytes.
func (id ID) Digest() []byte {
	return []byte(id.digest)
}

// Bytes returns the binary form:
//
//	0x01 ‖ uvarint(codec) ‖ uvarint(hash) ‖ uvarint(len(digest)) ‖ digest
//
// Bytes of the zero ID is nil.
func (id ID) Bytes() []byte {
	if !id.Defined() {
		return nil
	}
	buffer := make([]byte, 0, 1+3*binary.MaxVarintLen64+len(id.digest))
	buffer = append(buffer, version)
	buffer = binary.AppendUvarint(buffer, uint64(id.codec))
	buffer = binary.AppendUvarint(buffer, uint64(id.hash))
	buffer = binary.AppendUvarint(buffer, uint64(len(id.digest)))
	return append(buffer, id.digest...)
}

// Cast parses the binary form produced by [ID.Bytes]. The input must
// contain exactly one address with no trailing bytes.
func Cast(data []byte) (ID, error) {
	if len(data) == 0 {
		return Undef, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if data[0] != version {
		return Undef, fmt.Errorf("%w: unsupported version %d", ErrMalformed, data[0])
	}
	rest := data[1:]

	codec, rest, err := readUvarint(rest, "codec")
	if err != nil {
		return Undef, err
	}
	hash, rest, err := readUvarint(rest, "hash function")
	if err != nil {
		return Undef, err
	}
	length, rest, err := readUvarint(rest, "digest length")
	if err != nil {
		return Undef, err
	}
	if length == 0 {
		return Undef, fmt.Errorf("%w: empty digest", ErrMalformed)
	}
	if uint64(len(rest)) != length {
		return Undef, fmt.Errorf("%w: digest is %d bytes, header says %d", ErrMalformed, len(rest), length)
	}

	return ID{codec: Codec(codec), hash: HashFunction(hash), digest: string(rest)}, nil
}

func readUvarint(data []byte, field string) (uint64, []byte, error) {
	value, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: bad %s varint", ErrMalformed, field)
	}
	return value, data[n:], nil
}

// textEncoding is RFC 4648 base32, unpadded. String lowercases it,
// matching the multibase "b" prefix.
var textEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// String returns the multibase base32 text form ("b" followed by
// lowercase base32 of [ID.Bytes]). The zero ID formats as "<undef>".
func (id ID) String() string {
	if !id.Defined() {
		return "<undef>"
	}
	return "b" + strings.ToLower(textEncoding.EncodeToString(id.Bytes()))
}

// Parse parses the text form produced by [ID.String].
func Parse(text string) (ID, error) {
	if len(text) < 2 || text[0] != 'b' {
		return Undef, fmt.Errorf("%w: %q is not a base32 address", ErrMalformed, text)
	}
	data, err := textEncoding.DecodeString(strings.ToUpper(text[1:]))
	if err != nil {
		return Undef, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Cast(data)
}
