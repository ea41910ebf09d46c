// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestore is a [store.Store] that keeps one file per block
// under a root directory:
//
//	<root>/blocks/<first two hex digits of the digest>/<hex address>
//	<root>/tmp/
//
// Block files are written to tmp and renamed into place, so a reader
// never sees a partial block. Each file starts with a compression byte
// (see [Compression]). LoadBytes recomputes the address of the
// decompressed bytes and fails with [store.ErrCorrupt] if it does not
// match; GetBlock returns the bytes unchecked.
package filestore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

const (
	blocksDir = "blocks"
	tmpDir    = "tmp"
)

// Config configures [Open].
type Config struct {
	// Root is the store directory. It is created if missing.
	Root string

	// Shape is the default address shape. Zero means
	// [store.DefaultShape].
	Shape cid.Shape

	// Compression is applied to new blocks. Existing blocks are read
	// whatever they were written with.
	Compression Compression

	// Logger receives hint warnings. Nil discards.
	Logger *slog.Logger
}

// Store is a directory of block files. It is safe for concurrent use,
// including by several processes sharing a root.
type Store struct {
	store.CBOR
	root        string
	addresser   store.Addresser
	compression Compression
	logger      *slog.Logger
}

// BlockInfo describes a stored block file.
type BlockInfo struct {
	Path        string
	Size        int64
	Compression Compression
}

// Open creates the directory layout under config.Root if needed and
// returns a store over it.
func Open(config Config) (*Store, error) {
	if config.Root == "" {
		return nil, errors.New("filestore: root directory is required")
	}
	switch config.Compression {
	case CompressionNone, CompressionLZ4, CompressionZstd, CompressionAuto:
	default:
		return nil, fmt.Errorf("filestore: unsupported compression %s", config.Compression)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, dir := range []string{
		config.Root,
		filepath.Join(config.Root, blocksDir),
		filepath.Join(config.Root, tmpDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("filestore: creating %s: %w", dir, err)
		}
	}

	return &Store{
		root:        config.Root,
		addresser:   store.Addresser{Default: config.Shape, Logger: logger},
		compression: config.Compression,
		logger:      logger,
	}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// BlockPath returns the path of the file holding id.
func (s *Store) BlockPath(id cid.ID) string {
	shard := hex.EncodeToString(id.Digest()[:1])
	return filepath.Join(s.root, blocksDir, shard, hex.EncodeToString(id.Bytes()))
}

// StoreBytes writes data as a block file under its address. A block
// that already exists is left alone.
func (s *Store) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	id, err := s.addresser.Address(data, hint)
	if err != nil {
		return cid.Undef, err
	}
	return id, s.PutBlock(id, data)
}

// LoadBytes reads, decompresses and verifies the block stored under
// id.
func (s *Store) LoadBytes(id cid.ID) ([]byte, error) {
	data, err := s.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if err := id.Verify(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", store.ErrCorrupt, id, err)
	}
	return data, nil
}

// PutBlock compresses data and writes it to the file for id. The
// contents are not checked against id.
func (s *Store) PutBlock(id cid.ID, data []byte) error {
	if !id.Defined() {
		return cid.ErrUndefined
	}
	finalPath := s.BlockPath(id)
	if _, err := os.Stat(finalPath); err == nil {
		return nil
	}

	block, err := encodeBlock(data, s.compression)
	if err != nil {
		return fmt.Errorf("encoding block %s: %w", id, err)
	}

	tmpFile, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "block-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp block file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(block); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing block %s: %w", id, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing block %s: %w", id, err)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("creating block shard directory: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming block to %s: %w", finalPath, err)
	}
	success = true

	s.logger.Debug("block file written",
		"address", id.String(),
		"size", len(data),
		"stored_size", len(block),
		"compression", Compression(block[0]).String(),
	)
	return nil
}

// GetBlock reads and decompresses the file for id.
func (s *Store) GetBlock(id cid.ID) ([]byte, error) {
	if !id.Defined() {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	block, err := os.ReadFile(s.BlockPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading block %s: %w", id, err)
	}

	data, _, err := decodeBlock(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", store.ErrCorrupt, id, err)
	}
	return data, nil
}

// Has reports whether a block file exists for id.
func (s *Store) Has(id cid.ID) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(s.BlockPath(id))
	return err == nil
}

// Stat describes the block file for id without verifying its
// contents.
func (s *Store) Stat(id cid.ID) (BlockInfo, error) {
	if !id.Defined() {
		return BlockInfo{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	path := s.BlockPath(id)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return BlockInfo{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return BlockInfo{}, fmt.Errorf("opening block %s: %w", id, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return BlockInfo{}, fmt.Errorf("stating block %s: %w", id, err)
	}
	var header [1]byte
	if _, err := file.Read(header[:]); err != nil {
		return BlockInfo{}, fmt.Errorf("%w: %s: reading header: %v", store.ErrCorrupt, id, err)
	}
	return BlockInfo{
		Path:        path,
		Size:        info.Size(),
		Compression: Compression(header[0]),
	}, nil
}
