// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides linkstore's standard CBOR encoding
// configuration.
//
// Every persisted block and every link in the wire format is CBOR.
// Content addresses are computed over encoded bytes, so the encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Same logical
// data always produces identical bytes, and so the same address.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Head inspection
//
// [PeekMajor] reports the major type of the next data item without
// decoding it, and [RawTag] captures a tag number with its content
// still encoded. Together they let a decoder choose a branch from the
// immediate shape of an item, which is how lib/link tells an inline
// value from an address (tag [TagCID]) without a schema.
//
// # Struct Tag Rules
//
// Types persisted only as CBOR use `cbor` struct tags. Types that also
// appear in JSON output use `json` tags; fxamacker/cbor falls back to
// them when `cbor` tags are absent. Never use both on the same field.
package codec
