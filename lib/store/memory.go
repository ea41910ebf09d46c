// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/linkstore/lib/cid"
)

// MemoryOptions configures [NewMemory].
type MemoryOptions struct {
	// Shape is the default address shape. Zero means [DefaultShape].
	Shape cid.Shape

	// Logger receives hint warnings. Nil discards.
	Logger *slog.Logger
}

// Memory is a map-backed [Store]. It copies bytes on the way in and on
// the way out. Memory is safe for concurrent use.
type Memory struct {
	CBOR
	addresser Addresser

	mu     sync.RWMutex
	blocks map[cid.ID][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory(options MemoryOptions) *Memory {
	return &Memory{
		addresser: Addresser{Default: options.Shape, Logger: options.Logger},
		blocks:    make(map[cid.ID][]byte),
	}
}

// StoreBytes stores a copy of data. Storing the same bytes twice is a
// no-op that returns the same address.
func (m *Memory) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	id, err := m.addresser.Address(data, hint)
	if err != nil {
		return cid.Undef, err
	}
	return id, m.PutBlock(id, data)
}

// LoadBytes returns a copy of the bytes stored under id.
func (m *Memory) LoadBytes(id cid.ID) ([]byte, error) {
	return m.GetBlock(id)
}

// PutBlock stores a copy of data under id.
func (m *Memory) PutBlock(id cid.ID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blocks[id]; !exists {
		m.blocks[id] = bytes.Clone(data)
	}
	return nil
}

// GetBlock returns a copy of the block stored under id.
func (m *Memory) GetBlock(id cid.ID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.blocks[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return bytes.Clone(data), nil
}

// Has reports whether id has been stored.
func (m *Memory) Has(id cid.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.blocks[id]
	return exists
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}
