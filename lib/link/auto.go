// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

import (
	"github.com/bureau-foundation/linkstore/lib/cid"
	"github.com/bureau-foundation/linkstore/lib/store"
)

// DefaultInlineLimit is the largest encoded size, in bytes, that
// [DefaultLimit] embeds inline.
const DefaultInlineLimit = 256

// Limit sets the inline threshold of an [AutoLink] type. Implementations
// are zero-size types; the limit is a property of the link type, not
// of a link value:
//
//	type tiny struct{}
//
//	func (tiny) InlineLimit() int { return 16 }
//
//	var name *link.AutoLink[string, tiny]
type Limit interface {
	InlineLimit() int
}

// DefaultLimit inlines values whose encoding is at most
// [DefaultInlineLimit] bytes.
type DefaultLimit struct{}

func (DefaultLimit) InlineLimit() int { return DefaultInlineLimit }

// Auto is an [AutoLink] with the default inline threshold.
type Auto[T any] = AutoLink[T, DefaultLimit]

type inlineState uint8

const (
	autoModified inlineState = iota
	autoInlined
	autoLinked
)

// AutoLink holds a value of type T that is stored inline in its
// parent when its encoding is at most L's limit, and as a separate
// block referenced by address otherwise. The decision is made on each
// Save of a modified value. The limit is not checked on decode: an
// inline value of any size is accepted.
//
// As with [Link], hold AutoLinks by pointer and do not share them
// between goroutines.
type AutoLink[T any, L Limit] struct {
	store store.Store
	value *T
	state inlineState
	id    cid.ID
}

// NewAuto returns a modified auto-link with the default threshold.
func NewAuto[T any](s store.Store, value T) *Auto[T] {
	return AutoFromValue[T, DefaultLimit](s, value)
}

// AutoFromValue returns a modified auto-link holding value.
func AutoFromValue[T any, L Limit](s store.Store, value T) *AutoLink[T, L] {
	return &AutoLink[T, L]{store: s, value: &value, state: autoModified}
}

// AutoFromID returns an auto-link to the out-of-line block at id.
func AutoFromID[T any, L Limit](s store.Store, id cid.ID) *AutoLink[T, L] {
	return &AutoLink[T, L]{store: s, state: autoLinked, id: id}
}

// Limit returns the inline threshold for this link type.
func (a *AutoLink[T, L]) Limit() int {
	var limit L
	return limit.InlineLimit()
}

// BindStore attaches s to an auto-link that has none, and binds links
// inside the cached value.
func (a *AutoLink[T, L]) BindStore(s store.Store) {
	if a.store == nil {
		a.store = s
	}
	if a.value != nil {
		store.Bind(a.store, a.value)
	}
}

// Read returns the value, loading it if the link is out-of-line and
// not yet cached. The returned value must not be changed.
func (a *AutoLink[T, L]) Read() (*T, error) {
	if a.value != nil {
		return a.value, nil
	}
	if a.state != autoLinked {
		panic("link: inline value missing")
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	return a.value, nil
}

// Edit returns the value for modification and marks the link
// modified. An out-of-line value is loaded first. An inlined value is
// also marked modified, so the next Save measures the edited value
// again and moves it out-of-line if it has outgrown the limit.
func (a *AutoLink[T, L]) Edit() (*T, error) {
	switch a.state {
	case autoLinked:
		if a.value == nil {
			if err := a.load(); err != nil {
				return nil, err
			}
		}
		a.state = autoModified
		a.id = cid.Undef
	case autoInlined:
		a.state = autoModified
	}
	return a.mustValue(), nil
}

// Save resolves the link to its encoded form. An out-of-line link
// returns its address and an inlined link returns its value, neither
// touching the store. A modified value is encoded: at most Limit()
// bytes and it becomes inlined, otherwise the encoding is stored and
// the link becomes out-of-line. No shape hint is passed on that store.
func (a *AutoLink[T, L]) Save() (MaybeLink[*T], error) {
	switch a.state {
	case autoLinked:
		return LinkTo[*T](a.id), nil
	case autoInlined:
		return Value(a.mustValue()), nil
	}

	value := a.mustValue()
	if a.store == nil {
		return MaybeLink[*T]{}, store.Wrap("encode", cid.Undef, store.ErrNoStore)
	}
	encoded, err := a.store.Encode(value)
	if err != nil {
		return MaybeLink[*T]{}, store.Wrap("encode", cid.Undef, err)
	}
	if len(encoded) <= a.Limit() {
		a.state = autoInlined
		return Value(value), nil
	}

	id, err := a.store.StoreBytes(encoded, nil)
	if err != nil {
		return MaybeLink[*T]{}, store.Wrap("store", cid.Undef, err)
	}
	a.state = autoLinked
	a.id = id
	return LinkTo[*T](id), nil
}

// ID returns the address of an out-of-line value.
func (a *AutoLink[T, L]) ID() (cid.ID, bool) {
	if a.state != autoLinked {
		return cid.Undef, false
	}
	return a.id, true
}

// Inlined reports whether the last Save embedded the value.
func (a *AutoLink[T, L]) Inlined() bool {
	return a.state == autoInlined
}

// Modified reports whether the next Save will re-encode the value.
func (a *AutoLink[T, L]) Modified() bool {
	return a.state == autoModified
}

// Cached reports whether the value is held in memory.
func (a *AutoLink[T, L]) Cached() bool {
	return a.value != nil
}

// MustRead is Read, panicking on error.
func (a *AutoLink[T, L]) MustRead() *T {
	return store.Must(a.Read())
}

// MustEdit is Edit, panicking on error.
func (a *AutoLink[T, L]) MustEdit() *T {
	return store.Must(a.Edit())
}

// MarshalCBOR saves the link and encodes the inline value or address.
func (a *AutoLink[T, L]) MarshalCBOR() ([]byte, error) {
	saved, err := a.Save()
	if err != nil {
		return nil, err
	}
	return saved.MarshalCBOR()
}

// UnmarshalCBOR decodes an inline value or an address. An inline
// value becomes a modified link, so its size is checked on the next
// Save; an address becomes an out-of-line link with an empty cache.
func (a *AutoLink[T, L]) UnmarshalCBOR(data []byte) error {
	var decoded MaybeLink[T]
	if err := decoded.UnmarshalCBOR(data); err != nil {
		return err
	}

	if id, ok := decoded.ID(); ok {
		*a = AutoLink[T, L]{store: a.store, state: autoLinked, id: id}
		return nil
	}
	value, _ := decoded.Get()
	*a = AutoLink[T, L]{store: a.store, value: &value, state: autoModified}
	if a.store != nil {
		store.Bind(a.store, a.value)
	}
	return nil
}

func (a *AutoLink[T, L]) load() error {
	if a.store == nil {
		return store.Wrap("load", a.id, store.ErrNoStore)
	}
	value, err := store.Load[T](a.store, a.id)
	if err != nil {
		return err
	}
	a.value = &value
	return nil
}

func (a *AutoLink[T, L]) mustValue() *T {
	if a.value == nil {
		panic("link: inline value missing")
	}
	return a.value
}
