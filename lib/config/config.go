// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/linkstore/lib/cid"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "LINKSTORE_CONFIG"

// Backend selects the block store implementation.
type Backend string

const (
	// Memory keeps blocks in process memory. Nothing survives exit.
	Memory Backend = "memory"
	// File keeps one file per block under store.path.
	File Backend = "file"
	// SQLite keeps blocks in the database file at store.path.
	SQLite Backend = "sqlite"
)

// Config is the linkstore configuration.
type Config struct {
	// Store configures the block store.
	Store StoreConfig `yaml:"store"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// StoreConfig configures the block store.
type StoreConfig struct {
	// Backend is memory, file or sqlite.
	Backend Backend `yaml:"backend"`

	// Path is the store directory (file) or database file (sqlite).
	// Ignored by memory. ${VAR} and ${VAR:-default} are expanded.
	Path string `yaml:"path"`

	// Codec is the codec of new addresses: dag-cbor or raw.
	Codec string `yaml:"codec"`

	// Hash is the hash function of new addresses: blake3 or sha2-256.
	Hash string `yaml:"hash"`

	// Compression applies to the file backend: none, lz4, zstd or
	// auto.
	Compression string `yaml:"compression"`

	// PoolSize is the sqlite connection count. Zero picks a default.
	PoolSize int `yaml:"pool_size"`

	// Seal enables encryption at rest when recipients are listed.
	Seal SealConfig `yaml:"seal"`
}

// SealConfig configures age encryption of stored blocks.
type SealConfig struct {
	// Recipients are age public keys ("age1...") every block is
	// encrypted to. Empty disables sealing.
	Recipients []string `yaml:"recipients"`

	// IdentityFile holds the age secret keys used to decrypt. Without
	// one a sealed store is write-only.
	IdentityFile string `yaml:"identity_file"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json. Empty picks text on a terminal and json
	// otherwise.
	Format string `yaml:"format"`
}

// Default returns the configuration used as the base before a file is
// loaded.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Store: StoreConfig{
			Backend:     File,
			Path:        filepath.Join(homeDir, ".cache", "linkstore"),
			Codec:       cid.DagCBOR.String(),
			Hash:        cid.BLAKE3.String(),
			Compression: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by LINKSTORE_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your linkstore config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over [Default]. Files ending
// in .json or .jsonc are read as JSON with comments and trailing commas
// allowed; anything else is YAML. The result is not validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so one decoder serves both.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Store.Path = expandVars(c.Store.Path, vars)
	c.Store.Seal.IdentityFile = expandVars(c.Store.Seal.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Shape returns the default address shape named by store.codec and
// store.hash.
func (c *Config) Shape() (cid.Shape, error) {
	codec, err := cid.ParseCodec(c.Store.Codec)
	if err != nil {
		return cid.Shape{}, fmt.Errorf("store.codec: %w", err)
	}
	hash, err := cid.ParseHashFunction(c.Store.Hash)
	if err != nil {
		return cid.Shape{}, fmt.Errorf("store.hash: %w", err)
	}
	return cid.Shape{Codec: codec, Hash: hash}, nil
}

// Sealed reports whether blocks are encrypted at rest.
func (c *Config) Sealed() bool {
	return len(c.Store.Seal.Recipients) > 0
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case Memory:
	case File, SQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for the %s backend", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be one of: memory, file, sqlite; got %q", c.Store.Backend))
	}

	if _, err := c.Shape(); err != nil {
		errs = append(errs, err)
	}

	compressionValues := []string{"none", "lz4", "zstd", "auto"}
	if !slices.Contains(compressionValues, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be one of: %v", compressionValues))
	}

	if c.Store.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("store.pool_size must not be negative"))
	}

	if c.Store.Seal.IdentityFile != "" && !c.Sealed() {
		errs = append(errs, fmt.Errorf("store.seal.identity_file is set but store.seal.recipients is empty"))
	}

	levelValues := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levelValues, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levelValues))
	}
	formatValues := []string{"", "text", "json"}
	if !slices.Contains(formatValues, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be text or json"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
