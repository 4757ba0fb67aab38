// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package settlement - inbound settlement events
//
// events arrive as two frame messages [topic, JSON] on a ZMQ SUB
// socket.  Each is parsed, checked against the daemon's own address,
// filtered for replays and then handed to a Handler.
package settlement

import (
	"time"
)

// Topic - subscription prefix for settlement messages
const Topic = "settlement"

// Event - a parsed settlement event
type Event struct {
	Id              string    `json:"id,omitempty"`
	Sender          string    `json:"sender"`
	Recipient       string    `json:"recipient,omitempty"`
	Amount          uint64    `json:"amount"`
	Asset           string    `json:"asset,omitempty"`
	CorrelationHint string    `json:"correlationHint,omitempty"`
	Received        time.Time `json:"received"`
}

// Handler - receiver of accepted events
//
// returns the id of the request that the event settled, if any
type Handler interface {
	OnSettlementEvent(event Event) (string, bool)
}
