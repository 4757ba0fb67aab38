// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"github.com/bitmark-inc/accessd/account"
)

// Directory - a source of handle to address mappings
//
// found is false when the directory has no entry for the handle, an
// error is only returned when the directory itself could not be
// consulted
type Directory interface {
	Lookup(handle account.Handle) (address string, found bool, err error)
}

// MultiDirectory - consult several directories in order
//
// the first directory to find the handle wins; if none finds it the
// first error encountered is returned
type MultiDirectory []Directory

// Lookup - implement Directory
func (m MultiDirectory) Lookup(handle account.Handle) (string, bool, error) {
	firstErr := error(nil)
	for _, d := range m {
		address, found, err := d.Lookup(handle)
		if nil != err {
			if nil == firstErr {
				firstErr = err
			}
			continue
		}
		if found {
			return address, true, nil
		}
	}
	return "", false, firstErr
}
