// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"github.com/andres-erbsen/clock"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/limitedset"
	"github.com/bitmark-inc/accessd/util"
	"github.com/bitmark-inc/logger"
)

// DefaultRecentEvents - number of event fingerprints kept for replay detection
const DefaultRecentEvents = 1000

// Intake - validation and replay filter in front of a handler
type Intake struct {
	log        *logger.L
	ownAddress string
	handler    Handler
	recent     *limitedset.LimitedSet
	clock      clock.Clock
}

// NewIntake - create an intake remembering up to recentEvents events
func NewIntake(log *logger.L, ownAddress string, recentEvents int, handler Handler, clk clock.Clock) *Intake {
	if recentEvents <= 0 {
		recentEvents = DefaultRecentEvents
	}
	if nil == clk {
		clk = clock.New()
	}
	return &Intake{
		log:        log,
		ownAddress: ownAddress,
		handler:    handler,
		recent:     limitedset.New(recentEvents),
		clock:      clk,
	}
}

// Accept - process one JSON payload
//
// returns the settled request id, empty if the event matched nothing
func (in *Intake) Accept(payload []byte) (string, error) {
	log := in.log

	event, err := Parse(payload, in.ownAddress, in.clock.Now())
	if nil != err {
		if fault.WrongRecipient == err {
			log.Debugf("ignore: %s", err)
		} else {
			log.Warnf("reject: %q  error: %s", payload, err)
		}
		return "", err
	}

	if !in.recent.AddIfAbsent(replayKey(event, payload)) {
		log.Debugf("replay: id: %q  sender: %q", event.Id, event.Sender)
		return "", fault.DuplicateSettlementEvent
	}

	log.Infof("event: id: %q  sender: %q  amount: %d %s  hint: %q", event.Id, event.Sender, event.Amount, event.Asset, event.CorrelationHint)

	requestId, matched := in.handler.OnSettlementEvent(event)
	if !matched {
		return "", nil
	}
	return requestId, nil
}

// events carrying an id are identified by it, others by content
func replayKey(event Event, payload []byte) string {
	if "" != event.Id {
		return util.Fingerprint([]byte("id:" + event.Id)).String()
	}
	return util.Fingerprint(payload).String()
}
