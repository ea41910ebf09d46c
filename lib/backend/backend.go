// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend opens the block store described by a
// [config.Config]: the configured base store, optionally sealed with
// age, wrapped in a logging decorator.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/config"
	"github.com/bureau-foundation/linkstore/lib/store"
	"github.com/bureau-foundation/linkstore/lib/store/filestore"
	"github.com/bureau-foundation/linkstore/lib/store/sealedstore"
	"github.com/bureau-foundation/linkstore/lib/store/sqlitestore"
)

// Handle is an opened store. Close releases it.
type Handle struct {
	store.Store

	// Backend is the configured base backend.
	Backend config.Backend

	// Shape is the default shape of new addresses.
	Shape cid.Shape

	// Sealed reports whether blocks are encrypted at rest.
	Sealed bool

	// Files is the file store when Backend is [config.File], for
	// inspecting block files. Nil otherwise.
	Files *filestore.Store

	close func() error
}

// baseStore is what every base backend provides.
type baseStore interface {
	store.Store
	store.Blocks
}

// Open validates cfg and opens its store. Log lines for every block
// operation go to logger at debug level.
func Open(cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	shape, err := cfg.Shape()
	if err != nil {
		return nil, err
	}

	handle := &Handle{
		Backend: cfg.Store.Backend,
		Shape:   shape,
		close:   func() error { return nil },
	}

	var base baseStore
	switch cfg.Store.Backend {
	case config.Memory:
		base = store.NewMemory(store.MemoryOptions{Shape: shape, Logger: logger})

	case config.File:
		compression, err := filestore.ParseCompression(cfg.Store.Compression)
		if err != nil {
			return nil, err
		}
		files, err := filestore.Open(filestore.Config{
			Root:        cfg.Store.Path,
			Shape:       shape,
			Compression: compression,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		handle.Files = files
		base = files

	case config.SQLite:
		database, err := sqlitestore.Open(sqlitestore.Config{
			Path:     cfg.Store.Path,
			PoolSize: cfg.Store.PoolSize,
			Shape:    shape,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		handle.close = database.Close
		base = database

	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Store.Backend)
	}

	var opened store.Store = base
	if cfg.Sealed() {
		sealed, err := openSealed(cfg.Store.Seal, base, shape, logger)
		if err != nil {
			handle.close()
			return nil, err
		}
		handle.Sealed = true
		opened = sealed
	}
	handle.Store = store.NewLogged(opened, logger)

	logger.Info("block store opened",
		"backend", string(cfg.Store.Backend),
		"path", cfg.Store.Path,
		"shape", shape.String(),
		"sealed", handle.Sealed,
	)
	return handle, nil
}

// Close releases the store.
func (h *Handle) Close() error {
	return h.close()
}

func openSealed(seal config.SealConfig, inner store.Blocks, shape cid.Shape, logger *slog.Logger) (*sealedstore.Store, error) {
	recipients, err := sealedstore.ParseRecipients(seal.Recipients)
	if err != nil {
		return nil, err
	}
	sealConfig := sealedstore.Config{
		Recipients: recipients,
		Shape:      shape,
		Logger:     logger,
	}
	if seal.IdentityFile != "" {
		identities, err := sealedstore.LoadIdentities(seal.IdentityFile)
		if err != nil {
			return nil, err
		}
		sealConfig.Identities = identities
	}
	return sealedstore.New(inner, sealConfig)
}
