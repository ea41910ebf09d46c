// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

// FormatError is returned when encoded bytes cannot be decoded as a
// link or as a value-or-link: the address does not parse, or the
// inline value does not decode into the target type.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return "link: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
