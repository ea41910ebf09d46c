// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store defines the backend contract for content-addressed
// links and the helpers built on it.
//
// A [Store] encodes and decodes values and persists bytes under
// content addresses ([cid.ID]). Everything a link does to reach
// storage goes through these four methods, so any medium (a map,
// flat files, SQLite, an encrypted wrapper) can back the same link
// types.
//
// Derived operations:
//
//   - [Put]: encode then StoreBytes
//   - [Load]: LoadBytes then decode, then [Bind]
//   - [Unmarshal]: decode then [Bind]
//   - [Must]: the unwrap-or-abort adapter for callers that treat
//     backend failures as fatal
//
// # Binding
//
// CBOR decoding creates links without knowing which store they came
// from. [Bind] walks a decoded value and hands the store to every
// [Binder] inside it; links bind their own cached values in turn, so a
// tree loaded lazily from a store stays attached to that store at
// every depth.
//
// # Errors
//
// Backend failures reach callers as [*Error], which records the
// failing step and address. [ErrNotFound], [ErrNoStore] and
// [ErrCorrupt] are matched with errors.Is.
//
// # Implementations
//
// [Memory] is the in-process store used by tests and short-lived
// trees. [Logged] decorates any store with slog output. Durable
// backends live in lib/store/filestore and lib/store/sqlitestore;
// lib/store/sealedstore adds encryption at rest; lib/store/storetest
// holds the conformance suite every backend runs.
package store
