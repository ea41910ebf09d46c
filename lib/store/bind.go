// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"reflect"
)

// Binder is implemented by values that need a store but are created
// by a decoder that cannot supply one, i.e. links. BindStore is
// responsible for binding anything the binder itself holds.
type Binder interface {
	BindStore(s Store)
}

var binderType = reflect.TypeFor[Binder]()

// Bind walks value and calls BindStore(s) on every [Binder] it finds.
// The walk follows pointers, interfaces, exported struct fields,
// slices, arrays and map values. It does not descend into a Binder.
func Bind(s Store, value any) {
	binder := &binding{store: s, seen: make(map[visit]struct{})}
	binder.walk(reflect.ValueOf(value))
}

type binding struct {
	store Store
	seen  map[visit]struct{}
}

// visit identifies a pointer already walked. The type is part of the
// key because a struct and its first field share an address.
type visit struct {
	pointer uintptr
	typ     reflect.Type
}

func (b *binding) walk(v reflect.Value) {
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		key := visit{pointer: v.Pointer(), typ: v.Type()}
		if _, ok := b.seen[key]; ok {
			return
		}
		b.seen[key] = struct{}{}
		if v.Type().Implements(binderType) {
			v.Interface().(Binder).BindStore(b.store)
			return
		}
		b.walk(v.Elem())

	case reflect.Interface:
		if !v.IsNil() {
			b.walk(v.Elem())
		}

	case reflect.Struct:
		if v.CanAddr() && v.Addr().Type().Implements(binderType) {
			v.Addr().Interface().(Binder).BindStore(b.store)
			return
		}
		structType := v.Type()
		for i := range v.NumField() {
			if !structType.Field(i).IsExported() {
				continue
			}
			b.walk(v.Field(i))
		}

	case reflect.Slice, reflect.Array:
		if !mayHoldBinder(v.Type().Elem()) {
			return
		}
		for i := range v.Len() {
			b.walk(v.Index(i))
		}

	case reflect.Map:
		if !mayHoldBinder(v.Type().Elem()) {
			return
		}
		iterator := v.MapRange()
		for iterator.Next() {
			b.walk(iterator.Value())
		}
	}
}

// mayHoldBinder reports whether values of t can reach a Binder. Used
// to skip scalar slices such as []byte without visiting each element.
func mayHoldBinder(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	default:
		return true
	}
}
