// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/bureau-foundation/linkstore/lib/cid"
)

// Store is the backend contract consumed by lib/link. Implementations
// persist bytes under content addresses and provide a schema-free,
// deterministic encoding for values.
//
// Encode and Decode must round-trip: Decode(Encode(v)) yields a value
// equal to v. StoreBytes must return the same address for the same
// bytes and hint. LoadBytes of an address that was never stored
// returns an error matching [ErrNotFound].
//
// Callers own the slices they pass in and get back; implementations
// must not retain or mutate them.
type Store interface {
	// Encode returns the encoded form of value.
	Encode(value any) ([]byte, error)

	// Decode decodes data into value, which must be a non-nil pointer.
	Decode(data []byte, value any) error

	// StoreBytes persists data and returns its address. If hint is
	// non-nil the backend derives the address with the hinted codec
	// and hash function when it can.
	StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error)

	// LoadBytes returns the bytes previously stored under id.
	LoadBytes(id cid.ID) ([]byte, error)
}

// Put encodes value and stores the result. The returned error is a
// [*Error].
func Put(s Store, value any, hint *cid.Shape) (cid.ID, error) {
	data, err := s.Encode(value)
	if err != nil {
		return cid.Undef, Wrap("encode", cid.Undef, err)
	}
	id, err := s.StoreBytes(data, hint)
	if err != nil {
		return cid.Undef, Wrap("store", cid.Undef, err)
	}
	return id, nil
}

// Load fetches and decodes the value stored under id, then binds any
// links inside it to s. The returned error is a [*Error].
func Load[T any](s Store, id cid.ID) (T, error) {
	var value T
	data, err := s.LoadBytes(id)
	if err != nil {
		return value, Wrap("load", id, err)
	}
	if err := Unmarshal(s, data, &value); err != nil {
		return value, Wrap("decode", id, err)
	}
	return value, nil
}

// Unmarshal decodes data into value with s and binds any links inside
// the result to s. Use it instead of s.Decode whenever the decoded
// value may contain links.
func Unmarshal(s Store, data []byte, value any) error {
	if err := s.Decode(data, value); err != nil {
		return err
	}
	Bind(s, value)
	return nil
}

// Must returns value, or panics with err. It adapts any store or link
// operation for callers that treat backend failures as fatal:
//
//	root := store.Must(store.Load[Tree](backend, id))
func Must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}
