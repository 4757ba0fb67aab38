// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/accessd/counter"
	"github.com/bitmark-inc/accessd/rpc/ratelimit"
	"github.com/bitmark-inc/logger"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Counted - anything holding a number of entries
type Counted interface {
	Count() int
}

// Settlement - received and rejected event totals
type Settlement interface {
	Counts() (uint64, uint64)
}

// Sources - where Info gathers its numbers
type Sources struct {
	Pending    Counted
	Windows    Counted
	Identities Counted
	Settlement Settlement
}

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	Sources Sources
	counter *counter.Counter
}

// New - create the Node RPC handler
func New(log *logger.L, start time.Time, version string, counter *counter.Counter, sources Sources) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		Sources: sources,
		counter: counter,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version    string          `json:"version"`
	Uptime     string          `json:"uptime"`
	RPCs       uint64          `json:"rpcs"`
	Pending    int             `json:"pending"`
	Windows    int             `json:"windows"`
	Identities int             `json:"identities"`
	Settlement SettlementCount `json:"settlement"`
}

// SettlementCount - settlement events seen by the subscriber
type SettlementCount struct {
	Received uint64 `json:"received"`
	Rejected uint64 `json:"rejected"`
}

// Info - return some information about this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	node.Fill(reply)
	return nil
}

// Fill - gather the current numbers
func (node *Node) Fill(reply *InfoReply) {
	s := node.Sources

	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	if nil != node.counter {
		reply.RPCs = node.counter.Uint64()
	}
	if nil != s.Pending {
		reply.Pending = s.Pending.Count()
	}
	if nil != s.Windows {
		reply.Windows = s.Windows.Count()
	}
	if nil != s.Identities {
		reply.Identities = s.Identities.Count()
	}
	if nil != s.Settlement {
		reply.Settlement.Received, reply.Settlement.Rejected = s.Settlement.Counts()
	}
}
