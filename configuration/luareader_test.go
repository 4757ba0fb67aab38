// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accessd/configuration"
	"github.com/bitmark-inc/accessd/fault"
)

type sample struct {
	Name     string            `gluamapper:"name"`
	Amount   uint64            `gluamapper:"amount"`
	Listen   []string          `gluamapper:"listen"`
	Enabled  bool              `gluamapper:"enabled"`
	Accounts map[string]string `gluamapper:"accounts"`
}

const sampleSource = `
local M = {}
M.name = "accessd"
M.amount = 2500
M.listen = { "127.0.0.1:2130", "[::1]:2130" }
M.enabled = true
M.accounts = { alice = "addr-alice", bob = "addr-bob" }
return M
`

func TestParseString(t *testing.T) {
	s := sample{}
	err := configuration.ParseConfigurationString(sampleSource, &s)
	require.Nil(t, err, "parse")

	assert.Equal(t, "accessd", s.Name, "name")
	assert.Equal(t, uint64(2500), s.Amount, "amount")
	assert.Equal(t, []string{"127.0.0.1:2130", "[::1]:2130"}, s.Listen, "listen")
	assert.True(t, s.Enabled, "enabled")
	assert.Equal(t, "addr-bob", s.Accounts["bob"], "accounts")
}

func TestParseFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "accessd.conf")
	err = ioutil.WriteFile(fileName, []byte(sampleSource), 0600)
	require.Nil(t, err, "write")

	s := sample{}
	err = configuration.ParseConfigurationFile(fileName, &s)
	require.Nil(t, err, "parse")
	assert.Equal(t, "addr-alice", s.Accounts["alice"], "accounts")
}

func TestParseNotTable(t *testing.T) {
	s := sample{}
	err := configuration.ParseConfigurationString(`return "text"`, &s)
	assert.Equal(t, fault.InvalidConfiguration, err, "non-table result")
}

func TestParseSyntaxError(t *testing.T) {
	s := sample{}
	err := configuration.ParseConfigurationString(`return {`, &s)
	assert.NotNil(t, err, "syntax error accepted")
}
