// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAccount(t *testing.T) {
	a, err := checkAccount("  alice ")
	assert.Nil(t, err, "valid account")
	assert.Equal(t, "alice", a, "account not trimmed")

	_, err = checkAccount("   ")
	assert.Equal(t, errNoAccount, err, "blank account accepted")
}

func TestPrintJson(t *testing.T) {
	b := &bytes.Buffer{}
	printJson(b, map[string]int{"count": 2})
	assert.Equal(t, "{\n  \"count\": 2\n}\n", b.String(), "wrong json output")
}
