// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/accessd/command/access-cli/rpccalls"
)

func runCheck(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	account, err := checkAccount(c.String("account"))
	if nil != err {
		return err
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Check(account)
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}

func runRequest(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	account, err := checkAccount(c.String("account"))
	if nil != err {
		return err
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Request(account, c.String("resource"))
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}

func runConfirm(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	account, err := checkAccount(c.String("account"))
	if nil != err {
		return err
	}

	data := &rpccalls.ConfirmData{
		Account:  account,
		Resource: c.String("resource"),
		Duration: c.Uint64("duration"),
		Timeout:  c.Uint64("timeout"),
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Confirm(data)
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}

func runRevoke(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	account, err := checkAccount(c.String("account"))
	if nil != err {
		return err
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Revoke(account)
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}

func runStatus(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	accounts := []string(c.Args())
	if 0 == len(accounts) {
		return errNoAccounts
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Status(accounts)
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}

func runInfo(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetInfoCompat()
	if nil != err {
		return err
	}
	response["_connection"] = m.connect

	printJson(m.w, response)
	return nil
}
