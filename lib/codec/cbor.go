// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes, which is what makes the encoding usable
// as input to a content address.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
// Unknown fields are silently ignored for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Decoding into any must pick a concrete map type. CBOR allows
		// non-string keys so the library default is
		// map[interface{}]interface{}; linkstore documents only ever use
		// text keys, and map[string]any is what the rest of Go expects.
		// Struct field decoding is unaffected.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// RawMessage is a raw encoded CBOR value. It implements
// cbor.Marshaler and cbor.Unmarshaler so it can be used to delay
// CBOR decoding or pre-encode CBOR output.
type RawMessage = cbor.RawMessage

// Tag is a CBOR tag number with an arbitrary Go content value. Used
// on the encode side to wrap a payload in a tag.
type Tag = cbor.Tag

// RawTag is a CBOR tag number with its content left encoded. Used on
// the decode side to look at a tag number before deciding how to
// decode the content.
type RawTag = cbor.RawTag

// NewEncoder returns a CBOR encoder that writes to w using the
// deterministic encoding configuration.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseFirst returns the CBOR diagnostic notation for the first
// data item in data, along with the remaining unconsumed bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}

// Wellformed reports an error if data is not exactly one well-formed
// CBOR data item.
func Wellformed(data []byte) error {
	return decMode.Wellformed(data)
}

// Major is the major type of a CBOR data item: the top three bits of
// its initial byte (RFC 8949 §3.1).
type Major uint8

const (
	MajorUnsigned   Major = 0
	MajorNegative   Major = 1
	MajorByteString Major = 2
	MajorTextString Major = 3
	MajorArray      Major = 4
	MajorMap        Major = 5
	MajorTag        Major = 6
	MajorSimple     Major = 7
)

// String returns the RFC 8949 name of the major type.
func (m Major) String() string {
	switch m {
	case MajorUnsigned:
		return "unsigned integer"
	case MajorNegative:
		return "negative integer"
	case MajorByteString:
		return "byte string"
	case MajorTextString:
		return "text string"
	case MajorArray:
		return "array"
	case MajorMap:
		return "map"
	case MajorTag:
		return "tag"
	case MajorSimple:
		return "simple/float"
	default:
		return fmt.Sprintf("major(%d)", uint8(m))
	}
}

// Well-known tag numbers.
const (
	// TagCID marks a byte string as an IPLD content identifier. It is
	// the only tag linkstore gives meaning to.
	TagCID uint64 = 42

	// TagSelfDescribed is the self-described CBOR magic (RFC 8949
	// §3.4.6). It carries no meaning of its own and wraps exactly one
	// enclosed item.
	TagSelfDescribed uint64 = 55799
)

// ErrEmpty is returned by [PeekMajor] for zero-length input.
var ErrEmpty = errors.New("codec: empty CBOR input")

// PeekMajor returns the major type of the first data item in data
// without decoding it.
func PeekMajor(data []byte) (Major, error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}
	return Major(data[0] >> 5), nil
}
