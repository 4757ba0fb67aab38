// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared setup for the rpc tests
package fixtures

import (
	"os"
	"sync"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
)

const (
	dir = "testing"

	// LogCategory - logger channel for tests
	LogCategory = "testing"
)

var pair struct {
	sync.Once
	certificate string
	key         string
}

// SetupTestLogger - start logging into a scratch directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the scratch directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(dir)
}

// Certificate - PEM certificate for 127.0.0.1, generated once per run
func Certificate() string {
	generate()
	return pair.certificate
}

// Key - PEM private key matching Certificate
func Key() string {
	generate()
	return pair.key
}

func generate() {
	pair.Do(func() {
		cert, key, err := certgen.NewTLSCertPair("accessd test", time.Now().Add(365*24*time.Hour), false, []string{"127.0.0.1"})
		if nil != err {
			panic(err)
		}
		pair.certificate = string(cert)
		pair.key = string(key)
	})
}
