// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	errNoAccount  = errors.New("account handle is required")
	errNoAccounts = errors.New("at least one account handle is required")
)

func checkAccount(account string) (string, error) {
	account = strings.TrimSpace(account)
	if "" == account {
		return "", errNoAccount
	}
	return account, nil
}

// print out json
func printJson(handle io.Writer, message interface{}) {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(handle, "error: %s\n", err)
		return
	}

	fmt.Fprintf(handle, "%s\n", b)
}
