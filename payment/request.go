// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment

import (
	"context"
	"time"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
)

// DefaultTimeout - how long to wait for settlement if not specified
const DefaultTimeout = 120 * time.Second

// Request - the details of a payment to be made by an account
//
// RequestId and ExpiresAt are filled in when the request is issued
type Request struct {
	Account      account.Handle `json:"account"`
	PayerAddress string         `json:"payer"`
	Amount       uint64         `json:"amount"`
	Asset        string         `json:"asset,omitempty"`
	Timeout      time.Duration  `json:"-"`
	RequestId    string         `json:"requestId,omitempty"`
	ExpiresAt    time.Time      `json:"expires,omitempty"`
}

// Validate - check the fields a caller must supply
func (r Request) Validate() error {
	if r.Account.IsZero() {
		return fault.InvalidAccountHandle
	}
	if "" == r.PayerAddress {
		return fault.InvalidAddress
	}
	if 0 == r.Amount {
		return fault.InvalidAmount
	}
	if r.Timeout < 0 {
		return fault.InvalidDuration
	}
	return nil
}

// Sender - dispatch of a payment request to the payer
type Sender interface {
	Send(ctx context.Context, request Request) error
}

// Status - read only view of an outstanding request
type Status struct {
	RequestId    string         `json:"requestId"`
	Account      account.Handle `json:"account"`
	PayerAddress string         `json:"payer"`
	Amount       uint64         `json:"amount"`
	Asset        string         `json:"asset,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	Waiters      int            `json:"waiters"`
}
