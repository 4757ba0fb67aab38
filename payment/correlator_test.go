// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/payment"
	"github.com/bitmark-inc/accessd/payment/mocks"
	"github.com/bitmark-inc/accessd/settlement"
	"github.com/bitmark-inc/logger"
)

const (
	alice = account.Handle("alice")
	bob   = account.Handle("bob")
	carol = account.Handle("carol")

	timeout = 120 * time.Second
)

func request(handle account.Handle, payer string, amount uint64) payment.Request {
	return payment.Request{
		Account:      handle,
		PayerAddress: payer,
		Amount:       amount,
		Asset:        "USDC",
		Timeout:      timeout,
	}
}

// wait for a future with a real time limit so a broken test fails
// rather than hangs
func outcome(t *testing.T, f *payment.Future) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	settled, err := f.Wait(ctx)
	require.Nil(t, err, "future did not resolve")
	return settled
}

func isDone(f *payment.Future) bool {
	select {
	case <-f.Done():
		return true
	default:
		return false
	}
}

func TestConcurrentObtainSendsOnce(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r payment.Request) error {
			close(entered)
			<-release
			return nil
		}).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	var first *payment.Future
	var firstJoined bool
	var firstErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstJoined, firstErr = c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	}()

	// second caller arrives while the first send is in flight
	<-entered
	second, joined, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	assert.Nil(t, err, "join")
	assert.True(t, joined, "second caller should join")

	close(release)
	wg.Wait()

	assert.Nil(t, firstErr, "first obtain")
	assert.False(t, firstJoined, "first caller joined")
	assert.Equal(t, first.RequestId(), second.RequestId(), "different requests")

	status, ok := c.Pending(alice)
	assert.True(t, ok, "not pending")
	assert.Equal(t, 2, status.Waiters, "wrong waiter count")

	id, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 100, Asset: "USDC"})
	assert.True(t, matched, "event did not match")
	assert.Equal(t, first.RequestId(), id, "wrong request settled")

	assert.True(t, outcome(t, first), "first not settled")
	assert.True(t, outcome(t, second), "second not settled")
	assert.Equal(t, 0, c.Count(), "request kept after match")
}

func TestManyJoinersShareOutcome(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	const callers = 20
	futures := make([]*payment.Future, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
			assert.Nil(t, err, "obtain[%d]", i)
			futures[i] = f
		}(i)
	}
	wg.Wait()

	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 250, Asset: "usdc"})
	assert.True(t, matched, "event did not match")

	for i, f := range futures {
		assert.Equal(t, futures[0].RequestId(), f.RequestId(), "request id[%d]", i)
		assert.True(t, outcome(t, f), "outcome[%d]", i)
	}
}

func TestSentRequestCarriesId(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	clk := clock.NewMock()
	var sent payment.Request

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r payment.Request) error {
			sent = r
			return nil
		}).Times(1)

	c := payment.New(logger.New(category), sender, clk)

	f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain")

	assert.Equal(t, f.RequestId(), sent.RequestId, "request id not sent")
	assert.NotEqual(t, "", sent.RequestId, "empty request id")
	assert.Equal(t, clk.Now().Add(timeout), sent.ExpiresAt, "wrong expiry")
	assert.Equal(t, alice, sent.Account, "wrong account")
}

func TestNoMatchLeavesPending(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain")

	events := []settlement.Event{
		{Sender: "addr-alice", Amount: 99, Asset: "USDC"},
		{Sender: "addr-mallory", Amount: 100, Asset: "USDC"},
		{Sender: "addr-alice", Amount: 100, Asset: "EURC"},
		{Sender: "addr-alice", Amount: 100, Asset: "USDC", CorrelationHint: "unknown-id"}, // falls back to scan
	}

	for i, e := range events[:3] {
		_, matched := c.OnSettlementEvent(e)
		assert.False(t, matched, "event[%d] matched", i)
		assert.False(t, isDone(f), "event[%d] resolved the future", i)
	}

	_, ok := c.Pending(alice)
	assert.True(t, ok, "request dropped by non-matching events")

	_, matched := c.OnSettlementEvent(events[3])
	assert.True(t, matched, "unknown hint should fall back to the scan")
	assert.True(t, outcome(t, f), "not settled")
}

func TestAnyAssetWhenUnspecified(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	r := request(alice, "addr-alice", 100)
	r.Asset = ""
	f, _, err := c.ObtainOrJoin(context.Background(), r)
	require.Nil(t, err, "obtain")

	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 100, Asset: "anything"})
	assert.True(t, matched, "asset should not matter")
	assert.True(t, outcome(t, f), "not settled")
}

func TestTimeout(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	clk := clock.NewMock()
	c := payment.New(logger.New(category), sender, clk)

	f1, _, err := c.ObtainOrJoin(context.Background(), request(bob, "addr-bob", 100))
	require.Nil(t, err, "obtain")
	f2, joined, err := c.ObtainOrJoin(context.Background(), request(bob, "addr-bob", 100))
	require.Nil(t, err, "join")
	require.True(t, joined, "not joined")

	clk.Add(timeout - time.Second)
	assert.False(t, isDone(f1), "resolved before timeout")

	clk.Add(time.Second)
	assert.False(t, outcome(t, f1), "first waiter settled")
	assert.False(t, outcome(t, f2), "second waiter settled")

	assert.Eventually(t, func() bool {
		_, ok := c.Pending(bob)
		return !ok
	}, time.Second, 10*time.Millisecond, "entry kept after timeout")

	// a later event does not revive the request
	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-bob", Amount: 100, Asset: "USDC"})
	assert.False(t, matched, "matched an expired request")

	f3, joined, err := c.ObtainOrJoin(context.Background(), request(bob, "addr-bob", 100))
	require.Nil(t, err, "fresh obtain")
	assert.False(t, joined, "joined an expired request")
	assert.NotEqual(t, f1.RequestId(), f3.RequestId(), "request id reused")
}

func TestTimeoutAfterMatchIsIgnored(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	clk := clock.NewMock()
	c := payment.New(logger.New(category), sender, clk)

	f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain")

	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 100, Asset: "USDC"})
	require.True(t, matched, "no match")

	// would panic on a second resolution
	clk.Add(2 * timeout)

	assert.True(t, outcome(t, f), "outcome changed after timeout")
}

func TestHintTakesPrecedence(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	// both accounts are paid for by the same address
	fa, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-shared", 100))
	require.Nil(t, err, "obtain alice")
	fc, _, err := c.ObtainOrJoin(context.Background(), request(carol, "addr-shared", 100))
	require.Nil(t, err, "obtain carol")

	id, matched := c.OnSettlementEvent(settlement.Event{
		Sender:          "addr-shared",
		Amount:          100,
		Asset:           "USDC",
		CorrelationHint: fc.RequestId(),
	})
	assert.True(t, matched, "no match")
	assert.Equal(t, fc.RequestId(), id, "hint ignored")
	assert.True(t, outcome(t, fc), "carol not settled")
	assert.False(t, isDone(fa), "alice resolved")
}

func TestHintNotSatisfiedFallsBack(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	fa, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain alice")
	fb, _, err := c.ObtainOrJoin(context.Background(), request(bob, "addr-bob", 500))
	require.Nil(t, err, "obtain bob")

	// names bob's request but cannot pay it, it does pay alice's
	id, matched := c.OnSettlementEvent(settlement.Event{
		Sender:          "addr-alice",
		Amount:          100,
		Asset:           "USDC",
		CorrelationHint: fb.RequestId(),
	})
	assert.True(t, matched, "no match")
	assert.Equal(t, fa.RequestId(), id, "wrong request")
	assert.False(t, isDone(fb), "bob resolved")
}

// Without a correlation hint the scan picks the first account in
// sorted order whose payer matches.  Two accounts paid for by one
// address can therefore be crossed: a payment intended for carol
// settles alice.  This documents the behaviour, it is not a goal.
func TestCrossedMatchOnSharedPayer(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	fc, _, err := c.ObtainOrJoin(context.Background(), request(carol, "addr-shared", 100))
	require.Nil(t, err, "obtain carol")
	fa, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-shared", 100))
	require.Nil(t, err, "obtain alice")

	// intended for carol
	id, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-shared", Amount: 100, Asset: "USDC"})
	assert.True(t, matched, "no match")
	assert.Equal(t, fa.RequestId(), id, "scan order changed")
	assert.True(t, outcome(t, fa), "alice not settled")
	assert.False(t, isDone(fc), "carol resolved")

	// the next identical payment settles carol
	id, matched = c.OnSettlementEvent(settlement.Event{Sender: "addr-shared", Amount: 100, Asset: "USDC"})
	assert.True(t, matched, "no second match")
	assert.Equal(t, fc.RequestId(), id, "carol not matched")
}

func TestSendFailure(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	failure := errors.New("broker down")

	sender := mocks.NewMockSender(ctl)
	gomock.InOrder(
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(failure),
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil),
	)

	clk := clock.NewMock()
	c := payment.New(logger.New(category), sender, clk)

	f, joined, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	assert.Nil(t, f, "future returned on failure")
	assert.False(t, joined, "joined")
	assert.True(t, fault.IsErrTransport(err), "not a transport error: %v", err)
	assert.True(t, errors.Is(err, failure), "cause lost")
	assert.Equal(t, 0, c.Count(), "entry kept after send failure")

	// a failed request does not leave a timer that ends the next one
	f, _, err = c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "retry")
	clk.Add(timeout / 2)
	assert.False(t, isDone(f), "resolved early")
}

func TestSendFailureReleasesJoiners(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r payment.Request) error {
			close(entered)
			<-release
			return errors.New("broker down")
		}).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	errs := make(chan error, 1)
	go func() {
		_, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
		errs <- err
	}()

	<-entered
	joiner, joined, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "join")
	require.True(t, joined, "not joined")

	close(release)
	assert.True(t, fault.IsErrTransport(<-errs), "first caller error")
	assert.False(t, outcome(t, joiner), "joiner settled")
}

func TestSettledHandlerRunsFirst(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain")

	var seen []payment.Request
	c.SetSettledHandler(func(r payment.Request) {
		assert.False(t, isDone(f), "waiter resumed before handler")
		seen = append(seen, r)
	})

	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "nobody", Amount: 100, Asset: "USDC"})
	assert.False(t, matched, "unrelated event matched")
	assert.Equal(t, 0, len(seen), "handler called without settlement")

	id, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 100, Asset: "USDC"})
	require.True(t, matched, "event not matched")
	require.Equal(t, 1, len(seen), "handler not called once")
	assert.Equal(t, alice, seen[0].Account, "wrong account")
	assert.Equal(t, id, seen[0].RequestId, "wrong request")
	assert.True(t, outcome(t, f), "not settled")
}

func TestSendFailureAfterSettlement(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	c := payment.New(logger.New(category), sender, clock.NewMock())

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r payment.Request) error {
			_, matched := c.OnSettlementEvent(settlement.Event{
				Id:     "ev-early",
				Sender: "addr-alice",
				Amount: 100,
				Asset:  "USDC",
			})
			assert.True(t, matched, "event not matched during send")
			return errors.New("link down")
		}).Times(1)

	f, joined, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "settled request reported as failed")
	require.NotNil(t, f, "no future")
	assert.False(t, joined, "joined")
	assert.True(t, outcome(t, f), "settlement lost")
	assert.Equal(t, 0, c.Count(), "entry kept")
}

func TestSupersede(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	f, _, err := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	require.Nil(t, err, "obtain")

	assert.True(t, c.Supersede(alice), "supersede")
	assert.False(t, c.Supersede(alice), "second supersede")
	assert.False(t, outcome(t, f), "superseded settled")

	fa, _, _ := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	fb, _, _ := c.ObtainOrJoin(context.Background(), request(bob, "addr-bob", 100))

	assert.Equal(t, 2, c.SupersedeAll(), "wrong supersede count")
	assert.False(t, outcome(t, fa), "alice settled")
	assert.False(t, outcome(t, fb), "bob settled")
	assert.Equal(t, 0, c.Count(), "requests remain")
}

func TestWaitCancelledLeavesOthers(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	sender := mocks.NewMockSender(ctl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := payment.New(logger.New(category), sender, clock.NewMock())

	f1, _, _ := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))
	f2, _, _ := c.ObtainOrJoin(context.Background(), request(alice, "addr-alice", 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	settled, err := f1.Wait(ctx)
	assert.False(t, settled, "cancelled wait settled")
	assert.Equal(t, context.Canceled, err, "wrong error")

	_, matched := c.OnSettlementEvent(settlement.Event{Sender: "addr-alice", Amount: 100, Asset: "USDC"})
	assert.True(t, matched, "no match")
	assert.True(t, outcome(t, f2), "other waiter affected")
	assert.True(t, outcome(t, f1), "abandoned future not resolved")
}

func TestInvalidRequest(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := payment.New(logger.New(category), mocks.NewMockSender(ctl), clock.NewMock())

	_, _, err := c.ObtainOrJoin(context.Background(), payment.Request{PayerAddress: "a", Amount: 1})
	assert.Equal(t, fault.InvalidAccountHandle, err, "missing account")

	_, _, err = c.ObtainOrJoin(context.Background(), payment.Request{Account: alice, Amount: 1})
	assert.Equal(t, fault.InvalidAddress, err, "missing payer")

	_, _, err = c.ObtainOrJoin(context.Background(), payment.Request{Account: alice, PayerAddress: "a"})
	assert.Equal(t, fault.InvalidAmount, err, "zero amount")

	_, _, err = c.ObtainOrJoin(context.Background(), payment.Request{Account: alice, PayerAddress: "a", Amount: 1, Timeout: -time.Second})
	assert.Equal(t, fault.InvalidDuration, err, "negative timeout")
}
