// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package access - decide whether an account has access and drive the
// payment flow when it does not
//
// every operation returns a Result; errors from the collaborators are
// folded into its Status so nothing but a Result crosses the tool
// boundary
package access

import (
	"context"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/payment"
	"github.com/bitmark-inc/accessd/window"
	"github.com/bitmark-inc/logger"
)

// Resolver - handle to payer address
type Resolver interface {
	Resolve(handle account.Handle) (string, error)
}

// Correlator - outstanding payment requests
type Correlator interface {
	ObtainOrJoin(ctx context.Context, request payment.Request) (*payment.Future, bool, error)
	Pending(handle account.Handle) (payment.Status, bool)
	SetSettledHandler(handler func(payment.Request))
}

// Windows - granted access
type Windows interface {
	Get(handle account.Handle) (window.Window, bool)
	Grant(handle account.Handle, duration time.Duration) (window.Window, error)
	Revoke(handle account.Handle) bool
}

// Result - outcome of an operation
type Result struct {
	Status    Status         `json:"status"`
	Account   account.Handle `json:"account,omitempty"`
	Resource  string         `json:"resource,omitempty"`
	Remaining uint64         `json:"remaining"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	RequestId string         `json:"requestId,omitempty"`
	Payer     string         `json:"payer,omitempty"`
	Amount    uint64         `json:"amount,omitempty"`
	Asset     string         `json:"asset,omitempty"`
	Timeout   uint64         `json:"timeout,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Report - current state of an account
type Report struct {
	Account account.Handle  `json:"account"`
	Window  *window.Window  `json:"window,omitempty"`
	Pending *payment.Status `json:"pending,omitempty"`
}

// Orchestrator - the access state machine
type Orchestrator struct {
	log        *logger.L
	resolver   Resolver
	correlator Correlator
	windows    Windows
	clock      clock.Clock
	options    Options
}

// New - create an orchestrator
func New(log *logger.L, resolver Resolver, correlator Correlator, windows Windows, clk clock.Clock, options Options) (*Orchestrator, error) {
	if err := options.Pricing.Validate(); nil != err {
		return nil, err
	}
	if nil == clk {
		clk = clock.New()
	}
	o := &Orchestrator{
		log:        log,
		resolver:   resolver,
		correlator: correlator,
		windows:    windows,
		clock:      clk,
		options:    options,
	}
	correlator.SetSettledHandler(o.settled)
	return o, nil
}

// CheckAccess - report whether an account has a valid window
func (o *Orchestrator) CheckAccess(ctx context.Context, handle string) Result {
	h, _, result, ok := o.begin(handle)
	if !ok {
		return result
	}

	if w, ok := o.windows.Get(h); ok {
		return o.active(AccessGranted, w, result)
	}

	result.Status = PaymentRequired
	if p, ok := o.correlator.Pending(h); ok {
		result.RequestId = p.RequestId
		result.Payer = p.PayerAddress
		result.Amount = p.Amount
		result.Asset = p.Asset
	} else {
		result.Amount = o.options.Pricing.Amount
		result.Asset = o.options.Pricing.Asset
	}
	return result
}

// RequestAccess - make sure a payment request is outstanding
//
// does not wait for settlement; the request id in the result is the
// one the payer should quote.  A window of the default duration is
// granted when the request settles even if nobody confirms
func (o *Orchestrator) RequestAccess(ctx context.Context, handle string, resource string) Result {
	h, payer, result, ok := o.begin(handle)
	if !ok {
		return result
	}
	result.Resource = resource

	if w, ok := o.windows.Get(h); ok {
		return o.active(AlreadyActive, w, result)
	}

	request := payment.Request{
		Account:      h,
		PayerAddress: payer,
		Amount:       o.options.Pricing.AmountFor(resource),
		Asset:        o.options.Pricing.Asset,
		Timeout:      o.options.timeout(0),
	}
	f, joined, err := o.correlator.ObtainOrJoin(ctx, request)
	if nil != err {
		return o.failed(err, result)
	}

	result.Status = PaymentRequired
	result.RequestId = f.RequestId()
	result.Payer = payer
	result.Amount = request.Amount
	result.Asset = request.Asset
	result.Timeout = window.Seconds(request.Timeout)

	// a joined request keeps its own terms
	if joined {
		if p, ok := o.correlator.Pending(h); ok && p.RequestId == result.RequestId {
			result.Amount = p.Amount
			result.Asset = p.Asset
			result.Timeout = window.Seconds(p.ExpiresAt.Sub(o.clock.Now()))
		}
		result.Message = "payment request already outstanding"
	}
	return result
}

// ConfirmAndGrant - wait for settlement and grant a window for duration
//
// blocks until the payment settles, the timeout elapses or ctx ends.
// The resource prices a request this call has to issue itself
func (o *Orchestrator) ConfirmAndGrant(ctx context.Context, handle string, resource string, duration time.Duration, timeout time.Duration) Result {
	h, payer, result, ok := o.begin(handle)
	if !ok {
		return result
	}
	result.Resource = resource
	if duration < 0 || timeout < 0 {
		result.Status = InvalidRequest
		result.Message = fault.InvalidDuration.Error()
		return result
	}

	if w, ok := o.windows.Get(h); ok {
		return o.active(AlreadyActive, w, result)
	}

	request := payment.Request{
		Account:      h,
		PayerAddress: payer,
		Amount:       o.options.Pricing.AmountFor(resource),
		Asset:        o.options.Pricing.Asset,
		Timeout:      o.options.timeout(timeout),
	}
	f, joined, err := o.correlator.ObtainOrJoin(ctx, request)
	if nil != err {
		return o.failed(err, result)
	}
	result.RequestId = f.RequestId()
	result.Payer = payer
	result.Amount = request.Amount
	result.Asset = request.Asset
	if joined {
		if p, ok := o.correlator.Pending(h); ok && p.RequestId == result.RequestId {
			result.Amount = p.Amount
			result.Asset = p.Asset
		}
	}

	settled, err := f.Wait(ctx)
	if nil != err {
		o.log.Infof("confirm: %q  wait ended: %s", h, err)
		result.Status = PaymentTimeout
		result.Message = err.Error()
		return result
	}
	if !settled {
		result.Status = PaymentTimeout
		result.Message = fault.PaymentTimeout.Error()
		return result
	}

	w, err := o.windows.Grant(h, o.options.duration(duration))
	if nil != err {
		return o.failed(err, result)
	}
	return o.active(PaymentConfirmed, w, result)
}

// grant the default window for a settled request
//
// runs before confirming callers resume, their own grant replaces it
func (o *Orchestrator) settled(request payment.Request) {
	_, err := o.windows.Grant(request.Account, o.options.duration(0))
	if nil != err {
		o.log.Errorf("settled: %q  request: %s  grant error: %s", request.Account, request.RequestId, err)
	}
}

// Inspect - window and pending request of an account
func (o *Orchestrator) Inspect(handle string) (Report, error) {
	h, err := account.Normalise(handle)
	if nil != err {
		return Report{}, err
	}
	r := Report{
		Account: h,
	}
	if w, ok := o.windows.Get(h); ok {
		r.Window = &w
	}
	if p, ok := o.correlator.Pending(h); ok {
		r.Pending = &p
	}
	return r, nil
}

// Revoke - withdraw access, a pending request is left to run its course
func (o *Orchestrator) Revoke(handle string) (bool, error) {
	h, err := account.Normalise(handle)
	if nil != err {
		return false, err
	}
	return o.windows.Revoke(h), nil
}

// normalise and resolve, ok is false if result is final
func (o *Orchestrator) begin(handle string) (account.Handle, string, Result, bool) {
	h, err := account.Normalise(handle)
	if nil != err {
		return "", "", Result{Status: InvalidRequest, Message: err.Error()}, false
	}

	result := Result{
		Account: h,
	}

	payer, err := o.resolver.Resolve(h)
	if nil != err {
		o.log.Warnf("resolve: %q  error: %s", h, err)
		return h, "", o.failed(err, result), false
	}
	return h, payer, result, true
}

func (o *Orchestrator) active(status Status, w window.Window, result Result) Result {
	expires := w.ExpiresAt
	result.Status = status
	result.Remaining = window.Seconds(w.Remaining(o.clock.Now()))
	result.ExpiresAt = &expires
	return result
}

// map an error to a status
func (o *Orchestrator) failed(err error, result Result) Result {
	switch {
	case fault.IsErrResolution(err):
		result.Status = ResolutionFailed
	case fault.IsErrTransport(err):
		result.Status = TransportError
	default:
		result.Status = InvalidRequest
	}
	result.Message = err.Error()
	return result
}
