// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitestore is a [store.Store] backed by a single SQLite
// database file, one row per block:
//
//	CREATE TABLE blocks (address BLOB PRIMARY KEY, data BLOB NOT NULL)
//
// The address column holds the binary address. Connections come from
// a fixed-size pool running in WAL mode, so concurrent loads do not
// block each other and a store never blocks a load.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// Config configures [Open].
type Config struct {
	// Path is the database file. Its parent directory must exist. The
	// file is created if missing.
	Path string

	// PoolSize is the number of connections. Zero or negative means
	// max(runtime.NumCPU(), 4).
	PoolSize int

	// Shape is the default address shape. Zero means
	// [store.DefaultShape].
	Shape cid.Shape

	// Logger receives pool lifecycle messages and hint warnings. Nil
	// discards.
	Logger *slog.Logger
}

// Store is a block table in SQLite. It is safe for concurrent use.
// Call Close when done.
type Store struct {
	store.CBOR
	pool      *sqlitex.Pool
	addresser store.Addresser
	logger    *slog.Logger
	path      string
}

const schema = `CREATE TABLE IF NOT EXISTS blocks (
	address BLOB PRIMARY KEY,
	data    BLOB NOT NULL
)`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA cache_size=-8192",
	"PRAGMA temp_store=MEMORY",
}

// Open opens or creates the database at config.Path. Connections are
// prepared lazily on first use.
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, errors.New("sqlitestore: Path is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}

	pool, err := sqlitex.NewPool(config.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening %s: %w", config.Path, err)
	}
	logger.Info("sqlite block store opened",
		"path", config.Path,
		"pool_size", poolSize,
	)

	return &Store{
		pool:      pool,
		addresser: store.Addresser{Default: config.Shape, Logger: logger},
		logger:    logger,
		path:      config.Path,
	}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlitestore: creating schema: %w", err)
	}
	return nil
}

// StoreBytes inserts data under its address. A row that already
// exists is left alone.
func (s *Store) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	id, err := s.addresser.Address(data, hint)
	if err != nil {
		return cid.Undef, err
	}
	return id, s.PutBlock(id, data)
}

// LoadBytes returns the bytes stored under id.
func (s *Store) LoadBytes(id cid.ID) ([]byte, error) {
	return s.GetBlock(id)
}

// PutBlock inserts data under id unless a row for id exists.
func (s *Store) PutBlock(id cid.ID, data []byte) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO blocks (address, data) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{id.Bytes(), data},
	})
	if err != nil {
		return fmt.Errorf("inserting block %s: %w", id, err)
	}
	return nil
}

// GetBlock returns the row stored under id.
func (s *Store) GetBlock(id cid.ID) ([]byte, error) {
	conn, err := s.take()
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var data []byte
	found := false
	err = sqlitex.Execute(conn, "SELECT data FROM blocks WHERE address = ?", &sqlitex.ExecOptions{
		Args: []any{id.Bytes()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("selecting block %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return data, nil
}

// Has reports whether a row exists for id.
func (s *Store) Has(id cid.ID) (bool, error) {
	count, err := s.count("SELECT COUNT(*) FROM blocks WHERE address = ?", id.Bytes())
	return count > 0, err
}

// Len returns the number of stored blocks.
func (s *Store) Len() (int, error) {
	return s.count("SELECT COUNT(*) FROM blocks")
}

// Close closes every connection. It blocks until borrowed connections
// are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("sqlite block store close failed",
			"path", s.path,
			"error", err,
		)
		return fmt.Errorf("sqlitestore: closing %s: %w", s.path, err)
	}
	s.logger.Info("sqlite block store closed", "path", s.path)
	return nil
}

func (s *Store) count(query string, args ...any) (int, error) {
	conn, err := s.take()
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counting blocks: %w", err)
	}
	return count, nil
}

// take borrows a connection. The store contract has no context, so a
// take waits for as long as it must.
func (s *Store) take() (*sqlite.Conn, error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: take: %w", err)
	}
	return conn, nil
}
