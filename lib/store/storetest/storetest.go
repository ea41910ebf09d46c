// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest provides a conformance suite for [store.Store]
// implementations and small decorators for testing code that uses a
// store.
package storetest

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// Run exercises the [store.Store] contract against stores returned by
// open. Each subtest gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("RoundTrip", func(t *testing.T) {
		s := open(t)
		data := []byte("round trip block")

		id, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		got, err := s.LoadBytes(id)
		if err != nil {
			t.Fatalf("LoadBytes(%s): %v", id, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("LoadBytes = %q, want %q", got, data)
		}
	})

	t.Run("AddressMatchesContent", func(t *testing.T) {
		s := open(t)
		data := []byte("addressed")

		id, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		if err := id.Verify(data); err != nil {
			t.Errorf("address does not hash the stored bytes: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		s := open(t)
		missing, err := cid.Sum(store.DefaultShape, []byte("never stored"))
		if err != nil {
			t.Fatalf("Sum: %v", err)
		}

		_, err = s.LoadBytes(missing)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("LoadBytes(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DuplicateStore", func(t *testing.T) {
		s := open(t)
		data := []byte("stored twice")

		first, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("first StoreBytes: %v", err)
		}
		second, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("second StoreBytes: %v", err)
		}
		if first != second {
			t.Errorf("same bytes stored at %s and %s", first, second)
		}
	})

	t.Run("HintHonored", func(t *testing.T) {
		s := open(t)
		hint := cid.Shape{Codec: cid.Raw, Hash: cid.SHA2_256}

		id, err := s.StoreBytes([]byte("hinted"), &hint)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		if id.Shape() != hint {
			t.Errorf("address shape = %s, want %s", id.Shape(), hint)
		}
	})

	t.Run("UnsupportedHintIgnored", func(t *testing.T) {
		s := open(t)
		hint := cid.Shape{Codec: cid.DagCBOR, Hash: cid.HashFunction(0x99)}
		data := []byte("exotic hint")

		id, err := s.StoreBytes(data, &hint)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		if err := id.Verify(data); err != nil {
			t.Errorf("fallback address does not verify: %v", err)
		}
	})

	t.Run("CopyIsolation", func(t *testing.T) {
		s := open(t)
		data := []byte("isolated")
		id, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		data[0] = 'X'

		loaded, err := s.LoadBytes(id)
		if err != nil {
			t.Fatalf("LoadBytes: %v", err)
		}
		if string(loaded) != "isolated" {
			t.Fatalf("store retained caller's slice: %q", loaded)
		}
		loaded[0] = 'Y'

		again, err := s.LoadBytes(id)
		if err != nil {
			t.Fatalf("second LoadBytes: %v", err)
		}
		if string(again) != "isolated" {
			t.Errorf("store returned its internal slice: %q", again)
		}
	})

	t.Run("LargeBlock", func(t *testing.T) {
		s := open(t)
		data := make([]byte, 300*1024)
		for i := range data {
			data[i] = byte(i % 251)
		}

		id, err := s.StoreBytes(data, nil)
		if err != nil {
			t.Fatalf("StoreBytes: %v", err)
		}
		loaded, err := s.LoadBytes(id)
		if err != nil {
			t.Fatalf("LoadBytes: %v", err)
		}
		if !bytes.Equal(loaded, data) {
			t.Errorf("large block mismatch: got %d bytes, want %d", len(loaded), len(data))
		}
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		s := open(t)
		type record struct {
			Name  string `cbor:"name"`
			Count int    `cbor:"count"`
		}
		original := record{Name: "leaf", Count: 3}

		data, err := s.Encode(original)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		var decoded record
		if err := s.Decode(data, &decoded); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded != original {
			t.Errorf("Decode(Encode(v)) = %+v, want %+v", decoded, original)
		}
	})
}

// RunBlocks exercises the [store.Blocks] contract against block
// tables returned by open.
func RunBlocks(t *testing.T, open func(t *testing.T) store.Blocks) {
	key := func(t *testing.T, content string) cid.ID {
		t.Helper()
		id, err := cid.Sum(store.DefaultShape, []byte(content))
		if err != nil {
			t.Fatalf("Sum: %v", err)
		}
		return id
	}

	t.Run("PutGet", func(t *testing.T) {
		b := open(t)
		// The key is deliberately not the hash of the block.
		id := key(t, "some other content")
		data := []byte("keyed block")

		if err := b.PutBlock(id, data); err != nil {
			t.Fatalf("PutBlock: %v", err)
		}
		got, err := b.GetBlock(id)
		if err != nil {
			t.Fatalf("GetBlock: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("GetBlock = %q, want %q", got, data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		b := open(t)
		_, err := b.GetBlock(key(t, "absent"))
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("GetBlock(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("FirstPutWins", func(t *testing.T) {
		b := open(t)
		id := key(t, "contested")
		if err := b.PutBlock(id, []byte("first")); err != nil {
			t.Fatalf("first PutBlock: %v", err)
		}
		if err := b.PutBlock(id, []byte("second")); err != nil {
			t.Fatalf("second PutBlock: %v", err)
		}
		got, err := b.GetBlock(id)
		if err != nil {
			t.Fatalf("GetBlock: %v", err)
		}
		if string(got) != "first" {
			t.Errorf("GetBlock = %q, want the first block", got)
		}
	})

	t.Run("CopyIsolation", func(t *testing.T) {
		b := open(t)
		id := key(t, "isolated key")
		data := []byte("isolated")
		if err := b.PutBlock(id, data); err != nil {
			t.Fatalf("PutBlock: %v", err)
		}
		data[0] = 'X'
		got, err := b.GetBlock(id)
		if err != nil {
			t.Fatalf("GetBlock: %v", err)
		}
		if string(got) != "isolated" {
			t.Errorf("block table retained caller's slice: %q", got)
		}
	})
}

// Counting wraps a store and counts byte-level calls. It is not safe
// for concurrent use.
type Counting struct {
	store.Store
	Stores int
	Loads  int
}

// NewCounting wraps inner.
func NewCounting(inner store.Store) *Counting {
	return &Counting{Store: inner}
}

func (c *Counting) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	c.Stores++
	return c.Store.StoreBytes(data, hint)
}

func (c *Counting) LoadBytes(id cid.ID) ([]byte, error) {
	c.Loads++
	return c.Store.LoadBytes(id)
}

// Reset zeroes the counters.
func (c *Counting) Reset() {
	c.Stores = 0
	c.Loads = 0
}

// Faulty wraps a store and fails the operations whose error field is
// set. Nil fields pass through.
type Faulty struct {
	store.Store
	EncodeErr error
	DecodeErr error
	StoreErr  error
	LoadErr   error
}

func (f *Faulty) Encode(value any) ([]byte, error) {
	if f.EncodeErr != nil {
		return nil, f.EncodeErr
	}
	return f.Store.Encode(value)
}

func (f *Faulty) Decode(data []byte, value any) error {
	if f.DecodeErr != nil {
		return f.DecodeErr
	}
	return f.Store.Decode(data, value)
}

func (f *Faulty) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	if f.StoreErr != nil {
		return cid.Undef, f.StoreErr
	}
	return f.Store.StoreBytes(data, hint)
}

func (f *Faulty) LoadBytes(id cid.ID) ([]byte, error) {
	if f.LoadErr != nil {
		return nil, fmt.Errorf("loading %s: %w", id, f.LoadErr)
	}
	return f.Store.LoadBytes(id)
}
