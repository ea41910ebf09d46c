// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"log/slog"

	"github.com/bureau-foundation/linkstore/lib/cid"
)

// Logged wraps a [Store] and logs every byte-level operation: debug
// for success, warn for failure. Encode and Decode are passed through
// without logging since they never touch storage.
type Logged struct {
	inner  Store
	logger *slog.Logger
}

// NewLogged returns inner wrapped with logging to logger. A nil
// logger discards.
func NewLogged(inner Store, logger *slog.Logger) *Logged {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logged{inner: inner, logger: logger}
}

func (l *Logged) Encode(value any) ([]byte, error) {
	return l.inner.Encode(value)
}

func (l *Logged) Decode(data []byte, value any) error {
	return l.inner.Decode(data, value)
}

func (l *Logged) StoreBytes(data []byte, hint *cid.Shape) (cid.ID, error) {
	id, err := l.inner.StoreBytes(data, hint)
	hintText := "none"
	if hint != nil {
		hintText = hint.String()
	}
	if err != nil {
		l.logger.Warn("block store failed",
			"size", len(data),
			"hint", hintText,
			"error", err,
		)
		return id, err
	}
	l.logger.Debug("block stored",
		"address", id.String(),
		"size", len(data),
		"hint", hintText,
	)
	return id, nil
}

func (l *Logged) LoadBytes(id cid.ID) ([]byte, error) {
	data, err := l.inner.LoadBytes(id)
	if err != nil {
		l.logger.Warn("block load failed",
			"address", id.String(),
			"error", err,
		)
		return nil, err
	}
	l.logger.Debug("block loaded",
		"address", id.String(),
		"size", len(data),
	)
	return data, nil
}
