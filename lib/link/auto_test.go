// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/codec"
	"github.com/bureau-foundation/linkstore/lib/store"
	"github.com/bureau-foundation/linkstore/lib/store/storetest"
)

type limit4 struct{}

func (limit4) InlineLimit() int { return 4 }

type counter struct {
	A int `cbor:"a"`
}

type document struct {
	Title *AutoLink[string, limit4] `cbor:"title"`
	Body  *AutoLink[string, limit4] `cbor:"body"`
}

func TestAutoThreshold(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		inlined bool
	}{
		{name: "empty", value: "", inlined: true},
		{name: "three bytes encoded", value: "ab", inlined: true},
		{name: "exactly at limit", value: "abc", inlined: true},
		{name: "one byte over", value: "abcd", inlined: false},
		{name: "well over", value: strings.Repeat("x", 64), inlined: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			backend := newCounting()
			a := AutoFromValue[string, limit4](backend, test.value)

			saved, err := a.Save()
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if saved.IsLink() == test.inlined {
				t.Errorf("IsLink() = %v, want %v", saved.IsLink(), !test.inlined)
			}
			if a.Inlined() != test.inlined {
				t.Errorf("Inlined() = %v, want %v", a.Inlined(), test.inlined)
			}
			wantStores := 1
			if test.inlined {
				wantStores = 0
			}
			if backend.Stores != wantStores {
				t.Errorf("Save performed %d stores, want %d", backend.Stores, wantStores)
			}
		})
	}
}

func TestAutoThresholdStruct(t *testing.T) {
	backend := newCounting()

	// {"a": 23} encodes in 4 bytes and {"a": 24} in 5.
	small := AutoFromValue[counter, limit4](backend, counter{A: 23})
	if _, err := small.Save(); err != nil {
		t.Fatalf("Save small: %v", err)
	}
	if !small.Inlined() {
		t.Error("4-byte struct was not inlined")
	}

	large := AutoFromValue[counter, limit4](backend, counter{A: 24})
	if _, err := large.Save(); err != nil {
		t.Fatalf("Save large: %v", err)
	}
	id, ok := large.ID()
	if !ok {
		t.Fatal("5-byte struct was inlined")
	}
	loaded, err := store.Load[counter](backend, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.A != 24 {
		t.Errorf("stored value = %+v", loaded)
	}
}

func TestAutoDefaultLimit(t *testing.T) {
	backend := newCounting()
	a := NewAuto(backend, strings.Repeat("y", 200))
	if a.Limit() != DefaultInlineLimit {
		t.Fatalf("Limit() = %d, want %d", a.Limit(), DefaultInlineLimit)
	}
	if _, err := a.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !a.Inlined() {
		t.Error("200-byte string not inlined under the default limit")
	}
}

func TestAutoLinkedSaveDoesNotStore(t *testing.T) {
	backend := newCounting()
	a := AutoFromValue[string, limit4](backend, "out of line")

	first, err := a.Save()
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := a.Save()
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	firstID, _ := first.ID()
	secondID, _ := second.ID()
	if firstID != secondID {
		t.Errorf("Save returned %s then %s", firstID, secondID)
	}
	if backend.Stores != 1 {
		t.Errorf("two saves performed %d stores, want 1", backend.Stores)
	}
}

func TestAutoFromIDLoadsLazily(t *testing.T) {
	backend := newCounting()
	id, err := store.Put(backend, "stored elsewhere", nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	backend.Reset()

	a := AutoFromID[string, limit4](backend, id)
	if a.Cached() || a.Modified() {
		t.Fatal("AutoFromID link should be unmodified with an empty cache")
	}
	saved, err := a.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, ok := saved.ID(); !ok || got != id {
		t.Errorf("Save = %+v, want link to %s", saved, id)
	}
	if backend.Loads != 0 {
		t.Errorf("Save loaded %d blocks", backend.Loads)
	}

	value, err := a.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if *value != "stored elsewhere" {
		t.Errorf("Read = %q", *value)
	}
	if backend.Loads != 1 {
		t.Errorf("Read performed %d loads, want 1", backend.Loads)
	}
}

func TestAutoEditLinkedShrinksInline(t *testing.T) {
	backend := newCounting()
	a := AutoFromValue[string, limit4](backend, "long enough")
	if _, err := a.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	value, err := a.Edit()
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !a.Modified() {
		t.Fatal("Edit did not mark the link modified")
	}
	if _, ok := a.ID(); ok {
		t.Error("modified link still reports an address")
	}
	*value = "ab"

	if _, err := a.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !a.Inlined() {
		t.Error("shrunk value was not inlined")
	}
}

func TestAutoEditInlinedRevalidates(t *testing.T) {
	backend := newCounting()
	a := AutoFromValue[string, limit4](backend, "ab")
	if _, err := a.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !a.Inlined() {
		t.Fatal("small value not inlined")
	}

	value, err := a.Edit()
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	*value = "grown past the limit"

	saved, err := a.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.IsLink() {
		t.Error("value that outgrew the limit stayed inline")
	}
	if backend.Stores != 1 {
		t.Errorf("Save performed %d stores, want 1", backend.Stores)
	}
}

func TestAutoStoresWithoutHint(t *testing.T) {
	backend := newCounting()
	shape := cid.Shape{Codec: cid.DagCBOR, Hash: cid.SHA2_256}
	id, err := store.Put(backend, "hinted original", &shape)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	a := AutoFromID[string, limit4](backend, id)
	value, err := a.Edit()
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	*value = "edited and long"

	saved, err := a.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	newID, ok := saved.ID()
	if !ok {
		t.Fatal("long value was inlined")
	}
	if newID.Shape() != store.DefaultShape {
		t.Errorf("shape = %s, want the store default %s", newID.Shape(), store.DefaultShape)
	}
}

func TestAutoEncodedForms(t *testing.T) {
	backend := newCounting()

	inline, err := codec.Marshal(AutoFromValue[string, limit4](backend, "ab"))
	if err != nil {
		t.Fatalf("Marshal inline: %v", err)
	}
	if major, _ := codec.PeekMajor(inline); major != codec.MajorTextString {
		t.Errorf("inline value encoded as %s", major)
	}

	linked, err := codec.Marshal(AutoFromValue[string, limit4](backend, "abcdef"))
	if err != nil {
		t.Fatalf("Marshal linked: %v", err)
	}
	if major, _ := codec.PeekMajor(linked); major != codec.MajorTag {
		t.Errorf("linked value encoded as %s", major)
	}
}

func TestAutoDocumentRoundTrip(t *testing.T) {
	backend := newCounting()
	original := document{
		Title: AutoFromValue[string, limit4](backend, "hi"),
		Body:  AutoFromValue[string, limit4](backend, "a body far longer than four bytes"),
	}
	id, err := store.Put(backend, &original, nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	// The document and its body.
	if backend.Stores != 2 {
		t.Errorf("Put performed %d stores, want 2", backend.Stores)
	}
	backend.Reset()

	loaded, err := store.Load[document](backend, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Title.Cached() {
		t.Error("inline title was not decoded with its parent")
	}
	if got := loaded.Title.MustRead(); *got != "hi" {
		t.Errorf("title = %q", *got)
	}
	if _, ok := loaded.Body.ID(); !ok {
		t.Fatal("body decoded inline")
	}
	if got := loaded.Body.MustRead(); *got != "a body far longer than four bytes" {
		t.Errorf("body = %q", *got)
	}
	if backend.Loads != 2 {
		t.Errorf("reading the document performed %d loads, want 2", backend.Loads)
	}
}

func TestAutoDecodeIgnoresLimit(t *testing.T) {
	backend := newCounting()
	long := strings.Repeat("z", 100)
	data, err := codec.Marshal(NewAuto(backend, long))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	a := &AutoLink[string, limit4]{}
	if err := store.Unmarshal(backend, data, a); err != nil {
		t.Fatalf("oversized inline value rejected on decode: %v", err)
	}
	if !a.Modified() {
		t.Error("decoded inline value should be modified")
	}
	if got := a.MustRead(); *got != long {
		t.Errorf("decoded %q", *got)
	}

	saved, err := a.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.IsLink() {
		t.Error("oversized value stayed inline after Save")
	}
}

func TestAutoErrors(t *testing.T) {
	failure := errors.New("no space")
	faulty := &storetest.Faulty{Store: store.NewMemory(store.MemoryOptions{}), StoreErr: failure}
	a := AutoFromValue[string, limit4](faulty, "too long to inline")
	if _, err := a.Save(); !errors.Is(err, failure) {
		t.Errorf("Save error = %v, want %v", err, failure)
	}
	if !a.Modified() {
		t.Error("failed Save cleared the modified state")
	}

	if _, err := AutoFromValue[string, limit4](nil, "x").Save(); !errors.Is(err, store.ErrNoStore) {
		t.Errorf("unbound Save error = %v, want ErrNoStore", err)
	}

	missing := testAddress(t, "auto missing")
	if _, err := AutoFromID[string, limit4](newCounting(), missing).Read(); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read error = %v, want ErrNotFound", err)
	}
}
