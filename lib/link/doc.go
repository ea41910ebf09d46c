// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package link provides lazily loaded references between values held
// in a content-addressed [store.Store].
//
// Three cell types cover the ways a value can refer to another:
//
//   - [Link] always refers by address. It loads on first Read, tracks
//     whether it has been edited, and stores the edited value on Save.
//     Unmodified links encode without touching the store.
//   - [MaybeLink] is an immutable value that is either inline or an
//     address. It decodes by the shape of the encoded item, so a byte
//     string is never mistaken for an address.
//   - [AutoLink] decides on each Save whether its value is small
//     enough to embed in the parent. The threshold is part of the
//     type: AutoLink[T, L] uses L.InlineLimit(), and [Auto] uses
//     [DefaultInlineLimit].
//
// Links encode as CBOR tag 42 wrapping a zero byte followed by the
// binary address, which is the IPLD DAG-CBOR link form. Encoding a
// value that contains modified links saves them first, so saving the
// root of a tree writes every changed block beneath it and nothing
// else.
//
// Decoded links carry no store. [store.Load] and [store.Unmarshal]
// bind them to the store the parent came from; links built in memory
// take their store from [New], [FromValue] and friends. Hold links by
// pointer in parent structs and do not share a link between
// goroutines.
package link
