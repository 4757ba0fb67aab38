// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accounts_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/rpc/accounts"
	"github.com/bitmark-inc/accessd/rpc/fixtures"
	"github.com/bitmark-inc/accessd/rpc/mocks"
	"github.com/bitmark-inc/logger"
)

func TestAccessCheck(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	expected := access.Result{
		Status:    access.AccessGranted,
		Account:   "alice",
		Remaining: 3600,
	}
	o.EXPECT().CheckAccess(gomock.Any(), "@alice").Return(expected).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply access.Result
	err := a.Check(&accounts.CheckArguments{Account: "@alice"}, &reply)
	assert.Nil(t, err, "wrong Check")
	assert.Equal(t, expected, reply, "wrong reply")
}

func TestAccessRequest(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	expected := access.Result{
		Status:    access.PaymentRequired,
		Account:   "bob",
		Resource:  "feed",
		RequestId: "r-1",
		Amount:    10,
	}
	o.EXPECT().RequestAccess(gomock.Any(), "bob", "feed").Return(expected).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply access.Result
	err := a.Request(&accounts.RequestArguments{Account: "bob", Resource: "feed"}, &reply)
	assert.Nil(t, err, "wrong Request")
	assert.Equal(t, expected, reply, "wrong reply")
}

func TestAccessConfirm(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	expected := access.Result{
		Status:    access.PaymentConfirmed,
		Account:   "alice",
		Remaining: 86400,
	}
	o.EXPECT().ConfirmAndGrant(gomock.Any(), "alice", "premium-report", 24*time.Hour, 120*time.Second).Return(expected).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply access.Result
	err := a.Confirm(&accounts.ConfirmArguments{Account: "alice", Resource: "premium-report", Duration: 86400, Timeout: 120}, &reply)
	assert.Nil(t, err, "wrong Confirm")
	assert.Equal(t, expected, reply, "wrong reply")
}

func TestAccessConfirmTimeoutTooLong(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	o.EXPECT().ConfirmAndGrant(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply access.Result
	err := a.Confirm(&accounts.ConfirmArguments{Account: "alice", Timeout: 24 * 3600}, &reply)
	assert.Equal(t, fault.InvalidDuration, err, "long timeout accepted")

	err = a.Confirm(&accounts.ConfirmArguments{Account: "alice", Duration: 1 << 62}, &reply)
	assert.Equal(t, fault.InvalidDuration, err, "huge duration accepted")
}

func TestAccessStatus(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	o.EXPECT().Inspect("alice").Return(access.Report{Account: "alice"}, nil).Times(1)
	o.EXPECT().Inspect("bob").Return(access.Report{Account: "bob"}, nil).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply accounts.StatusReply
	err := a.Status(&accounts.StatusArguments{Accounts: []string{"alice", "bob"}}, &reply)
	assert.Nil(t, err, "wrong Status")
	assert.Equal(t, 2, len(reply.Reports), "wrong report count")
	assert.Equal(t, account.Handle("bob"), reply.Reports[1].Account, "wrong order")
}

func TestAccessStatusErrors(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	o.EXPECT().Inspect("bad handle").Return(access.Report{}, fault.InvalidAccountHandle).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply accounts.StatusReply
	err := a.Status(&accounts.StatusArguments{}, &reply)
	assert.Equal(t, fault.InvalidCount, err, "empty list accepted")

	err = a.Status(&accounts.StatusArguments{Accounts: []string{"bad handle"}}, &reply)
	assert.Equal(t, fault.InvalidAccountHandle, err, "wrong error")
}

func TestAccessRevoke(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	o := mocks.NewMockOrchestrator(ctl)
	o.EXPECT().Revoke("alice").Return(true, nil).Times(1)
	o.EXPECT().Revoke("").Return(false, fault.InvalidAccountHandle).Times(1)

	a := accounts.New(logger.New(fixtures.LogCategory), o)

	var reply accounts.RevokeReply
	err := a.Revoke(&accounts.RevokeArguments{Account: "alice"}, &reply)
	assert.Nil(t, err, "wrong Revoke")
	assert.True(t, reply.Revoked, "not revoked")
	assert.Equal(t, "alice", reply.Account, "wrong account")

	err = a.Revoke(&accounts.RevokeArguments{Account: ""}, &reply)
	assert.Equal(t, fault.InvalidAccountHandle, err, "wrong error")
}
