// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/google/uuid"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/settlement"
	"github.com/bitmark-inc/logger"
)

// an outstanding request
type pending struct {
	request   Request
	createdAt time.Time
	waiters   []*Future
	timer     *clock.Timer
}

// Correlator - table of outstanding payment requests
type Correlator struct {
	sync.Mutex
	log     *logger.L
	sender  Sender
	clock   clock.Clock
	pending map[account.Handle]*pending
	byId    map[string]account.Handle
	settled func(Request)
}

// New - create an empty correlator
func New(log *logger.L, sender Sender, clk clock.Clock) *Correlator {
	if nil == clk {
		clk = clock.New()
	}
	return &Correlator{
		log:     log,
		sender:  sender,
		clock:   clk,
		pending: make(map[account.Handle]*pending),
		byId:    make(map[string]account.Handle),
	}
}

// ObtainOrJoin - wait on the outstanding request for an account,
// issuing a new one if there is none
//
// joined is true when an existing request was joined, in which case
// nothing is sent.  A send failure removes the new request, resolves
// anyone who joined it with false and returns a fault.SendFailed error,
// unless the request was resolved while sending
func (c *Correlator) ObtainOrJoin(ctx context.Context, request Request) (*Future, bool, error) {
	if err := request.Validate(); nil != err {
		return nil, false, err
	}
	if 0 == request.Timeout {
		request.Timeout = DefaultTimeout
	}

	handle := request.Account

	c.Lock()
	if p, ok := c.pending[handle]; ok {
		f := newFuture(p.request.RequestId)
		p.waiters = append(p.waiters, f)
		n := len(p.waiters)
		c.Unlock()
		c.log.Infof("join: %q  request: %s  waiters: %d", handle, f.requestId, n)
		return f, true, nil
	}

	now := c.clock.Now()
	id, err := uuid.NewRandom()
	fault.PanicIfError("payment request id", err)
	requestId := id.String()

	request.RequestId = requestId
	request.ExpiresAt = now.Add(request.Timeout)

	f := newFuture(requestId)
	p := &pending{
		request:   request,
		createdAt: now,
		waiters:   []*Future{f},
	}
	c.pending[handle] = p
	c.byId[requestId] = handle
	p.timer = c.clock.AfterFunc(request.Timeout, func() {
		c.expire(handle, requestId)
	})
	c.Unlock()

	c.log.Infof("request: %q  id: %s  payer: %q  amount: %d %s  timeout: %s", handle, requestId, request.PayerAddress, request.Amount, request.Asset, request.Timeout)

	// dispatch without holding the lock, others may join meanwhile
	err = c.sender.Send(ctx, request)
	if nil != err {
		if !c.end(handle, requestId, false) {
			// settled or expired while sending, the outcome stands
			c.log.Warnf("send: %q  id: %s  error after resolution: %s", handle, requestId, err)
			return f, false, nil
		}
		c.log.Errorf("send: %q  id: %s  error: %s", handle, requestId, err)
		return nil, false, fault.Wrap(fault.SendFailed, err)
	}

	return f, false, nil
}

// SetSettledHandler - called with each settled request before any
// of its waiters resume
func (c *Correlator) SetSettledHandler(handler func(Request)) {
	c.Lock()
	c.settled = handler
	c.Unlock()
}

// OnSettlementEvent - resolve the request an event settles
//
// a correlation hint naming a satisfied request takes precedence,
// otherwise requests are scanned in account order for one whose
// payer sent at least the required amount of the required asset
func (c *Correlator) OnSettlementEvent(event settlement.Event) (string, bool) {
	c.Lock()
	p := c.match(event)
	if nil == p {
		c.Unlock()
		c.log.Debugf("no match: sender: %q  amount: %d %s  hint: %q", event.Sender, event.Amount, event.Asset, event.CorrelationHint)
		return "", false
	}
	c.remove(p)
	handler := c.settled
	c.Unlock()

	c.log.Infof("settled: %q  id: %s  by: %q  amount: %d %s", p.request.Account, p.request.RequestId, event.Sender, event.Amount, event.Asset)
	if nil != handler {
		handler(p.request)
	}
	resolveAll(p.waiters, true)
	return p.request.RequestId, true
}

// must hold lock
func (c *Correlator) match(event settlement.Event) *pending {
	if "" != event.CorrelationHint {
		if handle, ok := c.byId[event.CorrelationHint]; ok {
			if p := c.pending[handle]; satisfies(p, event) {
				return p
			}
		}
	}

	handles := make([]string, 0, len(c.pending))
	for handle := range c.pending {
		handles = append(handles, handle.String())
	}
	sort.Strings(handles)

	for _, h := range handles {
		p := c.pending[account.Handle(h)]
		if satisfies(p, event) {
			return p
		}
	}
	return nil
}

func satisfies(p *pending, event settlement.Event) bool {
	if nil == p {
		return false
	}
	r := p.request
	if r.PayerAddress != event.Sender {
		return false
	}
	if event.Amount < r.Amount {
		return false
	}
	return "" == r.Asset || strings.EqualFold(r.Asset, event.Asset)
}

// Supersede - end an outstanding request, waiters receive false
//
// returns false if no request was outstanding
func (c *Correlator) Supersede(handle account.Handle) bool {
	c.Lock()
	p, ok := c.pending[handle]
	if ok {
		c.remove(p)
	}
	c.Unlock()

	if !ok {
		return false
	}
	c.log.Infof("superseded: %q  id: %s", handle, p.request.RequestId)
	resolveAll(p.waiters, false)
	return true
}

// SupersedeAll - end every outstanding request, used at shutdown
func (c *Correlator) SupersedeAll() int {
	c.Lock()
	all := make([]*pending, 0, len(c.pending))
	for _, p := range c.pending {
		all = append(all, p)
	}
	for _, p := range all {
		c.remove(p)
	}
	c.Unlock()

	for _, p := range all {
		resolveAll(p.waiters, false)
	}
	if len(all) > 0 {
		c.log.Infof("superseded all: %d", len(all))
	}
	return len(all)
}

// Pending - snapshot of the outstanding request for an account
func (c *Correlator) Pending(handle account.Handle) (Status, bool) {
	c.Lock()
	defer c.Unlock()

	p, ok := c.pending[handle]
	if !ok {
		return Status{}, false
	}
	return Status{
		RequestId:    p.request.RequestId,
		Account:      p.request.Account,
		PayerAddress: p.request.PayerAddress,
		Amount:       p.request.Amount,
		Asset:        p.request.Asset,
		CreatedAt:    p.createdAt,
		ExpiresAt:    p.request.ExpiresAt,
		Waiters:      len(p.waiters),
	}, true
}

// Count - number of outstanding requests
func (c *Correlator) Count() int {
	c.Lock()
	defer c.Unlock()
	return len(c.pending)
}

// timer callback, the id check makes a late timer for an already
// resolved request harmless
func (c *Correlator) expire(handle account.Handle, requestId string) {
	if c.end(handle, requestId, false) {
		c.log.Infof("timeout: %q  id: %s", handle, requestId)
	}
}

// remove a specific request and resolve its waiters
func (c *Correlator) end(handle account.Handle, requestId string, settled bool) bool {
	c.Lock()
	p, ok := c.pending[handle]
	if !ok || p.request.RequestId != requestId {
		c.Unlock()
		return false
	}
	c.remove(p)
	c.Unlock()

	resolveAll(p.waiters, settled)
	return true
}

// must hold lock
func (c *Correlator) remove(p *pending) {
	delete(c.pending, p.request.Account)
	delete(c.byId, p.request.RequestId)
	if nil != p.timer {
		p.timer.Stop()
	}
}

// in join order
func resolveAll(waiters []*Future, settled bool) {
	for _, f := range waiters {
		f.resolve(settled)
	}
}
