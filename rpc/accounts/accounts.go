// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accounts

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/rpc/ratelimit"
	"github.com/bitmark-inc/logger"
)

const (
	rateLimitAccess = 100
	rateBurstAccess = 200

	// longest a Confirm call may block
	maximumConfirmTimeout = 15 * time.Minute

	// longest window a Confirm call may grant
	maximumDuration = 366 * 24 * time.Hour

	maximumStatusCount = 100
)

// Orchestrator - the access operations served over RPC
type Orchestrator interface {
	CheckAccess(ctx context.Context, handle string) access.Result
	RequestAccess(ctx context.Context, handle string, resource string) access.Result
	ConfirmAndGrant(ctx context.Context, handle string, resource string, duration time.Duration, timeout time.Duration) access.Result
	Inspect(handle string) (access.Report, error)
	Revoke(handle string) (bool, error)
}

// Access - type for RPC calls
type Access struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	Orchestrator Orchestrator
}

// New - create the Access RPC handler
func New(log *logger.L, orchestrator Orchestrator) *Access {
	return &Access{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitAccess, rateBurstAccess),
		Orchestrator: orchestrator,
	}
}

// ---

// CheckArguments - arguments for Check
type CheckArguments struct {
	Account string `json:"account"`
}

// Check - does an account hold a valid window
func (a *Access) Check(arguments *CheckArguments, reply *access.Result) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	a.Log.Debugf("Access.Check: %+v", arguments)

	*reply = a.Orchestrator.CheckAccess(context.Background(), arguments.Account)
	return nil
}

// ---

// RequestArguments - arguments for Request
type RequestArguments struct {
	Account  string `json:"account"`
	Resource string `json:"resource"`
}

// Request - ensure a payment request is outstanding for an account
func (a *Access) Request(arguments *RequestArguments, reply *access.Result) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	a.Log.Debugf("Access.Request: %+v", arguments)

	*reply = a.Orchestrator.RequestAccess(context.Background(), arguments.Account, arguments.Resource)
	return nil
}

// ---

// ConfirmArguments - arguments for Confirm
//
// durations are in seconds, zero selects the configured default
type ConfirmArguments struct {
	Account  string `json:"account"`
	Resource string `json:"resource"`
	Duration uint64 `json:"duration"`
	Timeout  uint64 `json:"timeout"`
}

// Confirm - wait for the payment and grant access
func (a *Access) Confirm(arguments *ConfirmArguments, reply *access.Result) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	a.Log.Debugf("Access.Confirm: %+v", arguments)

	if arguments.Timeout > uint64(maximumConfirmTimeout/time.Second) ||
		arguments.Duration > uint64(maximumDuration/time.Second) {
		return fault.InvalidDuration
	}
	timeout := time.Duration(arguments.Timeout) * time.Second
	duration := time.Duration(arguments.Duration) * time.Second

	// the orchestrator applies the timeout, this only bounds a stuck call
	ctx, cancel := context.WithTimeout(context.Background(), maximumConfirmTimeout+time.Minute)
	defer cancel()

	*reply = a.Orchestrator.ConfirmAndGrant(ctx, arguments.Account, arguments.Resource, duration, timeout)
	return nil
}

// ---

// StatusArguments - arguments for Status
type StatusArguments struct {
	Accounts []string `json:"accounts"`
}

// StatusReply - window and pending request per account
type StatusReply struct {
	Reports []access.Report `json:"reports"`
}

// Status - report windows and outstanding requests
func (a *Access) Status(arguments *StatusArguments, reply *StatusReply) error {

	if err := ratelimit.LimitN(a.Limiter, len(arguments.Accounts), maximumStatusCount); nil != err {
		return err
	}

	reports := make([]access.Report, 0, len(arguments.Accounts))
	for _, handle := range arguments.Accounts {
		r, err := a.Orchestrator.Inspect(handle)
		if nil != err {
			a.Log.Warnf("Access.Status: %q  error: %s", handle, err)
			return err
		}
		reports = append(reports, r)
	}
	reply.Reports = reports

	return nil
}

// ---

// RevokeArguments - arguments for Revoke
type RevokeArguments struct {
	Account string `json:"account"`
}

// RevokeReply - result of Revoke
type RevokeReply struct {
	Account string `json:"account"`
	Revoked bool   `json:"revoked"`
}

// Revoke - withdraw the access window of an account
func (a *Access) Revoke(arguments *RevokeArguments, reply *RevokeReply) error {

	if err := ratelimit.Limit(a.Limiter); nil != err {
		return err
	}

	a.Log.Infof("Access.Revoke: %q", arguments.Account)

	revoked, err := a.Orchestrator.Revoke(arguments.Account)
	if nil != err {
		return err
	}
	reply.Account = arguments.Account
	reply.Revoked = revoked

	return nil
}
