// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - human readable account handles
//
// a handle is what callers use to name an account, e.g. "@Alice" or
// "alice".  All handles are normalised before use so that the forms
// that differ only by case or a leading sigil name the same account.
package account

import (
	"strings"

	"github.com/bitmark-inc/accessd/fault"
)

// MaximumLength - longest acceptable handle after normalisation
const MaximumLength = 64

// leading decorative characters, only one is removed
const sigils = "@$~"

// Handle - a normalised account handle
type Handle string

// Normalise - convert a string into a handle
//
// whitespace is trimmed, one leading sigil is removed and the result
// is lower cased; only [a-z0-9._-] may remain
func Normalise(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	if "" != s && strings.IndexByte(sigils, s[0]) >= 0 {
		s = s[1:]
	}
	s = strings.ToLower(s)

	if 0 == len(s) || len(s) > MaximumLength {
		return "", fault.InvalidAccountHandle
	}

	for i := 0; i < len(s); i += 1 {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return "", fault.InvalidAccountHandle
		}
	}
	return Handle(s), nil
}

// String - the handle as a string
func (h Handle) String() string {
	return string(h)
}

// IsZero - true for the empty handle
func (h Handle) IsZero() bool {
	return "" == h
}

// MarshalText - convert to text for JSON
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h), nil
}

// UnmarshalText - convert from text, normalising
func (h *Handle) UnmarshalText(s []byte) error {
	n, err := Normalise(string(s))
	if nil != err {
		return err
	}
	*h = n
	return nil
}
