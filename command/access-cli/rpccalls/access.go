// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/rpc/accounts"
)

// ConfirmData - parameters for a confirm request, times in seconds
type ConfirmData struct {
	Account  string
	Resource string
	Duration uint64
	Timeout  uint64
}

// Check - current window of an account
func (client *Client) Check(account string) (*access.Result, error) {
	args := accounts.CheckArguments{
		Account: account,
	}
	return client.call("Access.Check", &args)
}

// Request - ask for a payment from an account
func (client *Client) Request(account string, resource string) (*access.Result, error) {
	args := accounts.RequestArguments{
		Account:  account,
		Resource: resource,
	}
	return client.call("Access.Request", &args)
}

// Confirm - wait for settlement and grant a window
func (client *Client) Confirm(data *ConfirmData) (*access.Result, error) {
	args := accounts.ConfirmArguments{
		Account:  data.Account,
		Resource: data.Resource,
		Duration: data.Duration,
		Timeout:  data.Timeout,
	}
	return client.call("Access.Confirm", &args)
}

// Status - windows and pending requests for several accounts
func (client *Client) Status(accountList []string) (*accounts.StatusReply, error) {
	args := accounts.StatusArguments{
		Accounts: accountList,
	}

	client.printJson("Status Request", args)

	var reply accounts.StatusReply
	if err := client.client.Call("Access.Status", &args, &reply); err != nil {
		return nil, err
	}

	client.printJson("Status Reply", reply)

	return &reply, nil
}

// Revoke - withdraw the access window of an account
func (client *Client) Revoke(account string) (*accounts.RevokeReply, error) {
	args := accounts.RevokeArguments{
		Account: account,
	}

	client.printJson("Revoke Request", args)

	var reply accounts.RevokeReply
	if err := client.client.Call("Access.Revoke", &args, &reply); err != nil {
		return nil, err
	}

	client.printJson("Revoke Reply", reply)

	return &reply, nil
}

func (client *Client) call(method string, args interface{}) (*access.Result, error) {

	client.printJson(method+" Request", args)

	var reply access.Result
	if err := client.client.Call(method, args, &reply); err != nil {
		return nil, err
	}

	client.printJson(method+" Reply", reply)

	return &reply, nil
}
