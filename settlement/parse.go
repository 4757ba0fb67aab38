// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bitmark-inc/accessd/fault"
)

// the JSON form of an event on the wire
//
// amount may be a decimal string or a number, either way it is an
// integer count of the asset's smallest unit
type wireEvent struct {
	Id        string      `json:"id"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	Amount    json.Number `json:"amount"`
	Asset     string      `json:"asset"`
	ReplyTo   string      `json:"replyTo"`
	RequestId string      `json:"requestId"`
}

// Parse - decode and validate one event
//
// ownAddress, if not empty, must equal the recipient when one is
// present; otherwise fault.WrongRecipient is returned
func Parse(data []byte, ownAddress string, received time.Time) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); nil != err {
		return Event{}, fault.Wrap(fault.InvalidSettlementEvent, err)
	}

	sender := strings.TrimSpace(w.Sender)
	if "" == sender {
		return Event{}, fault.InvalidSettlementEvent
	}

	amount, err := strconv.ParseUint(string(w.Amount), 10, 64)
	if nil != err || 0 == amount {
		return Event{}, fault.InvalidAmount
	}

	recipient := strings.TrimSpace(w.Recipient)
	if "" != recipient && "" != ownAddress && recipient != ownAddress {
		return Event{}, fault.WrongRecipient
	}

	// explicit request id is preferred to a reply reference
	hint := strings.TrimSpace(w.RequestId)
	if "" == hint {
		hint = strings.TrimSpace(w.ReplyTo)
	}

	e := Event{
		Id:              strings.TrimSpace(w.Id),
		Sender:          sender,
		Recipient:       recipient,
		Amount:          amount,
		Asset:           strings.TrimSpace(w.Asset),
		CorrelationHint: hint,
		Received:        received,
	}
	return e, nil
}
