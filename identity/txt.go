// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/accessd/fault"
)

// the tag to detect applicable TXT records from DNS
const txtTag = "accessd-id=v1"

// TxtRecord - the fields of an identity TXT record
type TxtRecord struct {
	Address string
	Name    string
}

// decode DNS TXT records of the form
//
//   accessd-id=v1 a=<address> [n=<display-name>]
//
// the display name may not contain spaces
func parseTxt(s string) (*TxtRecord, error) {

	t := &TxtRecord{}

	countA := 0
	countN := 0

words:
	for i, w := range strings.Split(strings.TrimSpace(s), " ") {

		if 0 == i {
			if txtTag == w {
				continue words
			}
			return nil, fault.InvalidDnsTxtRecord
		}

		// ignore empty
		if "" == w {
			continue words
		}

		// require form: <letter>=<word>
		if len(w) < 3 || '=' != w[1] {
			return nil, fault.InvalidDnsTxtRecord
		}

		parameter := w[2:]
		switch w[0] {
		case 'a':
			t.Address = parameter
			countA += 1
		case 'n':
			t.Name = parameter
			countN += 1
		default:
			return nil, fault.InvalidDnsTxtRecord
		}
	}

	if countA != 1 || countN > 1 {
		return nil, fault.InvalidDnsTxtRecord
	}

	return t, nil
}

// FormatTxt - produce the TXT record text that publishes an address
func FormatTxt(address string, name string) (string, error) {
	if "" == address || strings.ContainsAny(address, " \t\r\n") {
		return "", fault.InvalidAddress
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return "", fault.InvalidDnsTxtRecord
	}
	if "" == name {
		return fmt.Sprintf("%s a=%s", txtTag, address), nil
	}
	return fmt.Sprintf("%s a=%s n=%s", txtTag, address, name), nil
}
