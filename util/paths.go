// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"
	"strings"
)

// DataPath - locate a configured file
//
// a leading "~/" refers to the home directory; any other relative name
// is taken to be inside the data directory
func DataPath(dataDirectory string, name string) string {
	if strings.HasPrefix(name, "~/") {
		if home, err := os.UserHomeDir(); nil == err {
			return filepath.Join(home, name[2:])
		}
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dataDirectory, name)
}

// PathExists - true if anything occupies the name, including a
// dangling symlink, so that generated keys never replace it
func PathExists(name string) bool {
	_, err := os.Lstat(name)
	return nil == err
}
