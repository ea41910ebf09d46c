// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealedstore encrypts blocks at rest with age. A sealed store
// sits on top of any [store.Blocks] table: it addresses the plaintext,
// encrypts it to every configured recipient, and keeps the ciphertext
// under the plaintext's address. Links written through a sealed store
// therefore carry the same addresses as links written to a plain
// store, and loads verify the decrypted bytes against them.
//
// A store without identities can write but not read.
package sealedstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// ErrNoIdentity is returned by loads from a store configured without
// identities.
var ErrNoIdentity = errors.New("sealedstore: no identity to decrypt with")

// Config configures [New].
type Config struct {
	// Recipients receive every block written. At least one is
	// required.
	Recipients []age.Recipient

	// Identities decrypt blocks on load. Empty makes the store
	// write-only.
	Identities []age.Identity

	// Shape is the default address shape. Zero means
	// [store.DefaultShape].
	Shape cid.Shape

	// Logger receives hint warnings. Nil discards.
	Logger *slog.Logger
}

// Store is an encrypting [store.Store]. It is as safe for concurrent
// use as the block table beneath it.
type Store struct {
	store.CBOR
	inner      store.Blocks
	addresser  store.Addresser
	recipients []age.Recipient
	identities []age.Identity
}

// New returns a sealed store writing to inner.
func New(inner store.Blocks, config Config) (*Store, error) {
	if inner == nil {
		return nil, errors.New("sealedstore: block table is required")
	}
	if len(config.Recipients) == 0 {
		return nil, errors.New("sealedstore: at least one recipient is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		inner:      inner,
		addresser:  store.Addresser{Default: config.Shape, Logger: logger},
		recipients: config.Recipients,
		identities: config.Identities,
	}, nil
}

// StoreBytes encrypts data and stores the ciphertext under the address
// of data.
func (s *Store) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	id, err := s.addresser.Address(data, hint)
	if err != nil {
		return cid.Undef, err
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, s.recipients...)
	if err != nil {
		return cid.Undef, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return cid.Undef, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return cid.Undef, fmt.Errorf("finalizing age encryption: %w", err)
	}

	if err := s.inner.PutBlock(id, ciphertext.Bytes()); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// LoadBytes decrypts the block stored under id and verifies it.
func (s *Store) LoadBytes(id cid.ID) ([]byte, error) {
	if len(s.identities) == 0 {
		return nil, ErrNoIdentity
	}
	ciphertext, err := s.inner.GetBlock(id)
	if err != nil {
		return nil, err
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), s.identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting block %s: %w", id, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading decrypted block: %w", store.ErrCorrupt, id, err)
	}
	if err := id.Verify(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", store.ErrCorrupt, id, err)
	}
	return plaintext, nil
}

// ParseRecipients parses age public keys ("age1...").
func ParseRecipients(keys []string) ([]age.Recipient, error) {
	recipients := make([]age.Recipient, 0, len(keys))
	for _, key := range keys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// LoadIdentities reads an age identity file: one "AGE-SECRET-KEY-1..."
// per line, with blank lines and # comments ignored.
func LoadIdentities(path string) ([]age.Identity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer file.Close()

	identities, err := age.ParseIdentities(file)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", path, err)
	}
	return identities, nil
}
