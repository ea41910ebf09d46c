// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads linkstore configuration.
//
// Configuration is read from a single file named by either the
// LINKSTORE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no fallback search.
// A command run without either uses [Default].
//
// Files are YAML, or JSON with comments when the name ends in .json
// or .jsonc:
//
//	store:
//	  backend: file
//	  path: ${HOME}/.cache/linkstore
//	  hash: blake3
//	  compression: auto
//	  seal:
//	    recipients: [age1...]
//	    identity_file: ${HOME}/.config/linkstore/identity.txt
//	log:
//	  level: debug
//
// ${VAR} and ${VAR:-default} are expanded in store.path and
// store.seal.identity_file. No environment variable overrides a value
// in the file.
package config
