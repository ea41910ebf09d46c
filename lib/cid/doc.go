// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cid implements content addresses for linkstore blocks.
//
// An [ID] is (codec, hash function, digest). Two IDs are equal iff all
// three match, and IDs are plain comparable values usable as map keys.
// A [Shape] is the (codec, hash function) pair alone: the part of an
// address that says how it was derived. Backends reuse a Shape when a
// modified value is stored again, so the new address keeps the
// original codec and hash function even though the digest changes.
//
// Three representations are supported:
//
//   - binary ([ID.Bytes], [Cast]): CIDv1 layout, version byte then
//     uvarint codec, uvarint hash, uvarint digest length, digest
//   - text ([ID.String], [Parse]): multibase base32, "b" prefix
//   - CBOR ([ID.MarshalCBOR]): tag 42 wrapping 0x00 ‖ binary, the
//     DAG-CBOR link convention
//
// [Sum] computes addresses with BLAKE3 (zeebo/blake3) or SHA2-256.
// Other hash-function tags can be parsed and compared but not computed.
package cid
