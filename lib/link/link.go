// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

import (
	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// Link is a reference to a value of type T persisted in a store. It
// loads the value on first access, caches it, records whether it has
// been edited, and writes a new block back on [Link.Save].
//
// A Link always encodes as its address, never its content. Hold links
// by pointer (*Link[T]) in persisted structures: marshalling a parent
// saves each link in place, and a nil pointer encodes as CBOR null.
//
// Links are single-owner. None of the methods are safe for concurrent
// use, including Read, which fills the cache.
type Link[T any] struct {
	store store.Store
	value *T
	state linkState
}

// linkState is either unmodified, with id set, or modified, with an
// optional shape hint for the next store.
type linkState struct {
	modified bool
	id       cid.ID
	hint     cid.Shape
	hasHint  bool
}

// New returns an unmodified link to the block at id. Nothing is
// loaded until the first Read or Edit.
func New[T any](s store.Store, id cid.ID) *Link[T] {
	return &Link[T]{store: s, state: linkState{id: id}}
}

// FromValue returns a modified link holding value. If hint is non-nil
// the first Save asks the store for an address of that shape.
func FromValue[T any](s store.Store, value T, hint *cid.Shape) *Link[T] {
	l := &Link[T]{store: s, value: &value, state: linkState{modified: true}}
	if hint != nil {
		l.state.hint = *hint
		l.state.hasHint = true
	}
	return l
}

// BindStore attaches s to a link that has none, and binds links
// inside the cached value. A link keeps the first store it is given.
func (l *Link[T]) BindStore(s store.Store) {
	if l.store == nil {
		l.store = s
	}
	if l.value != nil {
		store.Bind(l.store, l.value)
	}
}

// Read returns the linked value, loading and decoding it on first
// use. Read never marks the link modified, so the returned value must
// not be changed; use [Link.Edit] for that.
func (l *Link[T]) Read() (*T, error) {
	if l.value != nil {
		return l.value, nil
	}
	if l.state.modified {
		panic("link: modified link has no value")
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l.value, nil
}

// Edit returns the linked value for modification, loading it first if
// needed, and marks the link modified. The next Save stores a new
// block even if the value is left unchanged. The shape of the current
// address is kept as the hint for that store.
func (l *Link[T]) Edit() (*T, error) {
	if !l.state.modified {
		if l.value == nil {
			if err := l.load(); err != nil {
				return nil, err
			}
		}
		l.state = linkState{modified: true, hint: l.state.id.Shape(), hasHint: true}
	}
	return l.mustValue(), nil
}

// Save writes the value back if the link is modified and returns its
// address. An unmodified link returns its address without touching
// the store. The cached value is kept.
func (l *Link[T]) Save() (cid.ID, error) {
	if !l.state.modified {
		return l.state.id, nil
	}
	value := l.mustValue()
	if l.store == nil {
		return cid.Undef, store.Wrap("store", cid.Undef, store.ErrNoStore)
	}

	var hint *cid.Shape
	if l.state.hasHint {
		shape := l.state.hint
		hint = &shape
	}
	id, err := store.Put(l.store, value, hint)
	if err != nil {
		return cid.Undef, err
	}
	l.state = linkState{id: id}
	return id, nil
}

// Release saves the link and drops the cached value. The next Read
// loads it again from the store.
func (l *Link[T]) Release() (cid.ID, error) {
	id, err := l.Save()
	if err != nil {
		return cid.Undef, err
	}
	l.value = nil
	return id, nil
}

// ID returns the current address. It reports false while the link is
// modified, since the address of the edited value is not known until
// Save.
func (l *Link[T]) ID() (cid.ID, bool) {
	if l.state.modified {
		return cid.Undef, false
	}
	return l.state.id, true
}

// Modified reports whether the next Save will store a block.
func (l *Link[T]) Modified() bool {
	return l.state.modified
}

// Cached reports whether the value is held in memory.
func (l *Link[T]) Cached() bool {
	return l.value != nil
}

// MustRead is Read, panicking on error.
func (l *Link[T]) MustRead() *T {
	return store.Must(l.Read())
}

// MustEdit is Edit, panicking on error.
func (l *Link[T]) MustEdit() *T {
	return store.Must(l.Edit())
}

// MustSave is Save, panicking on error.
func (l *Link[T]) MustSave() cid.ID {
	return store.Must(l.Save())
}

// MarshalCBOR saves the link and encodes its address.
func (l *Link[T]) MarshalCBOR() ([]byte, error) {
	id, err := l.Save()
	if err != nil {
		return nil, err
	}
	return id.MarshalCBOR()
}

// UnmarshalCBOR decodes an address. The link is left unmodified with
// an empty cache; it keeps any store it already had and otherwise
// waits for [Link.BindStore].
func (l *Link[T]) UnmarshalCBOR(data []byte) error {
	var id cid.ID
	if err := id.UnmarshalCBOR(data); err != nil {
		return &FormatError{Err: err}
	}
	*l = Link[T]{store: l.store, state: linkState{id: id}}
	return nil
}

func (l *Link[T]) load() error {
	if l.store == nil {
		return store.Wrap("load", l.state.id, store.ErrNoStore)
	}
	value, err := store.Load[T](l.store, l.state.id)
	if err != nil {
		return err
	}
	l.value = &value
	return nil
}

func (l *Link[T]) mustValue() *T {
	if l.value == nil {
		panic("link: modified link has no value")
	}
	return l.value
}
