// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

import (
	"strings"
	"time"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/payment"
)

// Pricing - what access costs
//
// resources not listed cost the default amount
type Pricing struct {
	Amount    uint64            `gluamapper:"amount" json:"amount"`
	Asset     string            `gluamapper:"asset" json:"asset"`
	Resources map[string]uint64 `gluamapper:"resources" json:"resources,omitempty"`
}

// Validate - a price of zero would accept any payment
func (p Pricing) Validate() error {
	if 0 == p.Amount {
		return fault.InvalidAmount
	}
	for _, amount := range p.Resources {
		if 0 == amount {
			return fault.InvalidAmount
		}
	}
	return nil
}

// AmountFor - price of a resource
func (p Pricing) AmountFor(resource string) uint64 {
	if amount, ok := p.Resources[strings.TrimSpace(resource)]; ok {
		return amount
	}
	return p.Amount
}

// Options - orchestrator settings
type Options struct {
	Pricing  Pricing
	Duration time.Duration // default access window
	Timeout  time.Duration // default wait for settlement
}

// DefaultDuration - access window when none is configured
const DefaultDuration = 24 * time.Hour

func (o Options) duration(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if o.Duration > 0 {
		return o.Duration
	}
	return DefaultDuration
}

func (o Options) timeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if o.Timeout > 0 {
		return o.Timeout
	}
	return payment.DefaultTimeout
}
