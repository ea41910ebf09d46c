// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealedstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/link"
	"github.com/bureau-foundation/linkstore/lib/store"
	"github.com/bureau-foundation/linkstore/lib/store/filestore"
	"github.com/bureau-foundation/linkstore/lib/store/storetest"
)

func generateIdentity(t *testing.T) *age.X25519Identity {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	return identity
}

func newSealed(t *testing.T, inner store.Blocks, identity *age.X25519Identity) *Store {
	t.Helper()
	s, err := New(inner, Config{
		Recipients: []age.Recipient{identity.Recipient()},
		Identities: []age.Identity{identity},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newSealed(t, store.NewMemory(store.MemoryOptions{}), generateIdentity(t))
	})
}

func TestNewValidation(t *testing.T) {
	identity := generateIdentity(t)
	if _, err := New(nil, Config{Recipients: []age.Recipient{identity.Recipient()}}); err == nil {
		t.Error("New with no block table succeeded")
	}
	if _, err := New(store.NewMemory(store.MemoryOptions{}), Config{}); err == nil {
		t.Error("New with no recipients succeeded")
	}
}

func TestCiphertextAtRest(t *testing.T) {
	inner := store.NewMemory(store.MemoryOptions{})
	s := newSealed(t, inner, generateIdentity(t))
	plaintext := []byte("confidential block contents")

	id, err := s.StoreBytes(plaintext, nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}
	if err := id.Verify(plaintext); err != nil {
		t.Errorf("address is not over the plaintext: %v", err)
	}

	raw, err := inner.GetBlock(id)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if bytes.Contains(raw, plaintext) {
		t.Error("inner table holds the plaintext")
	}
	// The inner table is keyed by the plaintext's address, not the
	// ciphertext's.
	if err := id.Verify(raw); !errors.Is(err, cid.ErrDigestMismatch) {
		t.Errorf("ciphertext verifies against the address: %v", err)
	}
}

func TestAddressesMatchPlainStore(t *testing.T) {
	type record struct {
		Name string `cbor:"name"`
	}
	plain := store.NewMemory(store.MemoryOptions{})
	sealed := newSealed(t, store.NewMemory(store.MemoryOptions{}), generateIdentity(t))

	plainID, err := store.Put(plain, record{Name: "same"}, nil)
	if err != nil {
		t.Fatalf("Put plain: %v", err)
	}
	sealedID, err := store.Put(sealed, record{Name: "same"}, nil)
	if err != nil {
		t.Fatalf("Put sealed: %v", err)
	}
	if plainID != sealedID {
		t.Errorf("sealed address %s differs from plain address %s", sealedID, plainID)
	}
}

func TestWrongIdentityCannotLoad(t *testing.T) {
	inner := store.NewMemory(store.MemoryOptions{})
	writer := newSealed(t, inner, generateIdentity(t))
	id, err := writer.StoreBytes([]byte("for someone else"), nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}

	reader := newSealed(t, inner, generateIdentity(t))
	if _, err := reader.LoadBytes(id); err == nil {
		t.Error("LoadBytes with the wrong identity succeeded")
	}
}

func TestWriteOnlyStore(t *testing.T) {
	identity := generateIdentity(t)
	inner := store.NewMemory(store.MemoryOptions{})
	writeOnly, err := New(inner, Config{Recipients: []age.Recipient{identity.Recipient()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := writeOnly.StoreBytes([]byte("drop box"), nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}
	if _, err := writeOnly.LoadBytes(id); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("LoadBytes error = %v, want ErrNoIdentity", err)
	}

	readable := newSealed(t, inner, identity)
	got, err := readable.LoadBytes(id)
	if err != nil {
		t.Fatalf("LoadBytes with identity: %v", err)
	}
	if string(got) != "drop box" {
		t.Errorf("LoadBytes = %q", got)
	}
}

func TestMultipleRecipients(t *testing.T) {
	alice := generateIdentity(t)
	bob := generateIdentity(t)
	inner := store.NewMemory(store.MemoryOptions{})
	s, err := New(inner, Config{Recipients: []age.Recipient{alice.Recipient(), bob.Recipient()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := s.StoreBytes([]byte("shared"), nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}

	for _, identity := range []*age.X25519Identity{alice, bob} {
		got, err := newSealed(t, inner, identity).LoadBytes(id)
		if err != nil {
			t.Fatalf("LoadBytes: %v", err)
		}
		if string(got) != "shared" {
			t.Errorf("LoadBytes = %q", got)
		}
	}
}

func TestSwappedCiphertextIsCorrupt(t *testing.T) {
	identity := generateIdentity(t)
	inner := store.NewMemory(store.MemoryOptions{})
	s := newSealed(t, inner, identity)

	first, err := s.StoreBytes([]byte("first block"), nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}
	second, err := s.StoreBytes([]byte("second block"), nil)
	if err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}

	// Place the ciphertext of the second block under a fresh key
	// claiming to be a third.
	ciphertext, err := inner.GetBlock(second)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	third, err := cid.Sum(first.Shape(), []byte("third block"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if err := inner.PutBlock(third, ciphertext); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	if _, err := s.LoadBytes(third); !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("LoadBytes of swapped ciphertext = %v, want ErrCorrupt", err)
	}
}

func TestSealedFileStoreTree(t *testing.T) {
	type folder struct {
		Name  string             `cbor:"name"`
		Child *link.Link[folder] `cbor:"child,omitempty"`
	}
	files, err := filestore.Open(filestore.Config{Root: t.TempDir(), Compression: filestore.CompressionAuto})
	if err != nil {
		t.Fatalf("filestore.Open: %v", err)
	}
	s := newSealed(t, files, generateIdentity(t))

	root := folder{Name: "root", Child: link.FromValue(s, folder{Name: "child"}, nil)}
	id, err := store.Put(s, &root, nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	// The file store cannot verify ciphertext against the plaintext
	// address.
	if _, err := files.LoadBytes(id); !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("plain LoadBytes of a sealed block = %v, want ErrCorrupt", err)
	}

	loaded, err := store.Load[folder](s, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	child, err := loaded.Child.Read()
	if err != nil {
		t.Fatalf("Read child: %v", err)
	}
	if child.Name != "child" {
		t.Errorf("child = %+v", child)
	}
}

func TestParseRecipients(t *testing.T) {
	identity := generateIdentity(t)
	recipients, err := ParseRecipients([]string{"  " + identity.Recipient().String() + "\n"})
	if err != nil {
		t.Fatalf("ParseRecipients: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("got %d recipients, want 1", len(recipients))
	}
	if _, err := ParseRecipients([]string{"not-a-key"}); err == nil {
		t.Error("ParseRecipients accepted an invalid key")
	}
}

func TestLoadIdentities(t *testing.T) {
	identity := generateIdentity(t)
	path := filepath.Join(t.TempDir(), "identity.txt")
	contents := strings.Join([]string{
		"# created for the test",
		"# public key: " + identity.Recipient().String(),
		identity.String(),
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	identities, err := LoadIdentities(path)
	if err != nil {
		t.Fatalf("LoadIdentities: %v", err)
	}
	if len(identities) != 1 {
		t.Fatalf("got %d identities, want 1", len(identities))
	}

	if _, err := LoadIdentities(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadIdentities of a missing file succeeded")
	}
}
