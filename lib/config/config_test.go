// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/linkstore/lib/cid"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Backend != File {
		t.Errorf("expected backend=file, got %s", cfg.Store.Backend)
	}
	if !strings.HasSuffix(cfg.Store.Path, filepath.Join(".cache", "linkstore")) {
		t.Errorf("expected path under .cache/linkstore, got %s", cfg.Store.Path)
	}
	if cfg.Store.Compression != "auto" {
		t.Errorf("expected compression=auto, got %s", cfg.Store.Compression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}

	shape, err := cfg.Shape()
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if shape != (cid.Shape{Codec: cid.DagCBOR, Hash: cid.BLAKE3}) {
		t.Errorf("default shape = %s", shape)
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when LINKSTORE_CONFIG not set, got nil")
	}
	expectedMsg := "LINKSTORE_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithEnvVar(t *testing.T) {
	path := writeConfig(t, "linkstore.yaml", `
store:
  backend: sqlite
  path: /test/blocks.db
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Store.Backend != SQLite {
		t.Errorf("expected backend=sqlite, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/test/blocks.db" {
		t.Errorf("expected path=/test/blocks.db, got %s", cfg.Store.Path)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "linkstore.yaml", `
store:
  backend: file
  path: /custom/root
  codec: raw
  hash: sha2-256
  compression: zstd
  pool_size: 2
  seal:
    recipients:
      - age1example
    identity_file: /keys/identity.txt

log:
  level: debug
  format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Store.Path != "/custom/root" {
		t.Errorf("expected path=/custom/root, got %s", cfg.Store.Path)
	}
	if cfg.Store.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Store.Compression)
	}
	if cfg.Store.PoolSize != 2 {
		t.Errorf("expected pool_size=2, got %d", cfg.Store.PoolSize)
	}
	if !cfg.Sealed() || cfg.Store.Seal.Recipients[0] != "age1example" {
		t.Errorf("expected one seal recipient, got %v", cfg.Store.Seal.Recipients)
	}
	if cfg.Store.Seal.IdentityFile != "/keys/identity.txt" {
		t.Errorf("expected identity_file=/keys/identity.txt, got %s", cfg.Store.Seal.IdentityFile)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("expected log debug/json, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}

	shape, err := cfg.Shape()
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if shape != (cid.Shape{Codec: cid.Raw, Hash: cid.SHA2_256}) {
		t.Errorf("shape = %s, want raw/sha2-256", shape)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "linkstore.yaml", `
log:
  level: warn
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Store.Backend != File || cfg.Store.Hash != "blake3" {
		t.Errorf("defaults lost: backend=%s hash=%s", cfg.Store.Backend, cfg.Store.Hash)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level=warn, got %s", cfg.Log.Level)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := writeConfig(t, "linkstore.jsonc", `{
  // Blocks live in memory for this run.
  "store": {
    "backend": "memory",
    "compression": "none", /* unused by memory */
  },
  "log": {"level": "error"},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Store.Backend != Memory {
		t.Errorf("expected backend=memory, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Compression != "none" {
		t.Errorf("expected compression=none, got %s", cfg.Store.Compression)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected level=error, got %s", cfg.Log.Level)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := writeConfig(t, "broken.yaml", "store: [unterminated\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("LINKSTORE_TEST_DIR", "/from/env")

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/blocks", "/home/test/blocks"},
		{"${LINKSTORE_TEST_DIR}/db", "/from/env/db"},
		{"${LINKSTORE_TEST_UNSET:-/fallback}", "/fallback"},
		{"${LINKSTORE_TEST_UNSET}", ""},
		{"/plain/path", "/plain/path"},
	}
	vars := map[string]string{"HOME": "/home/test"}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandVars(tt.input, vars); got != tt.want {
				t.Errorf("expandVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadFileExpandsPaths(t *testing.T) {
	t.Setenv("HOME", "/home/linkstore")
	path := writeConfig(t, "linkstore.yaml", `
store:
  path: ${HOME}/store
  seal:
    recipients: [age1example]
    identity_file: ${LINKSTORE_TEST_KEYS:-/etc/linkstore}/identity.txt
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Store.Path != "/home/linkstore/store" {
		t.Errorf("expected expanded path, got %s", cfg.Store.Path)
	}
	if cfg.Store.Seal.IdentityFile != "/etc/linkstore/identity.txt" {
		t.Errorf("expected default-expanded identity file, got %s", cfg.Store.Seal.IdentityFile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "default is valid",
			modify: func(*Config) {},
		},
		{
			name:   "memory needs no path",
			modify: func(c *Config) { c.Store.Backend = Memory; c.Store.Path = "" },
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "tape" },
			wantErr: "store.backend",
		},
		{
			name:    "file without path",
			modify:  func(c *Config) { c.Store.Path = "" },
			wantErr: "store.path",
		},
		{
			name:    "unknown codec",
			modify:  func(c *Config) { c.Store.Codec = "dag-json" },
			wantErr: "store.codec",
		},
		{
			name:    "unknown hash",
			modify:  func(c *Config) { c.Store.Hash = "md5" },
			wantErr: "store.hash",
		},
		{
			name:    "unknown compression",
			modify:  func(c *Config) { c.Store.Compression = "gzip" },
			wantErr: "store.compression",
		},
		{
			name:    "negative pool",
			modify:  func(c *Config) { c.Store.PoolSize = -1 },
			wantErr: "store.pool_size",
		},
		{
			name:    "identity without recipients",
			modify:  func(c *Config) { c.Store.Seal.IdentityFile = "/keys" },
			wantErr: "store.seal.identity_file",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Store.Path = "/data"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "tape"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"store.backend", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
