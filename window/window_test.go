// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package window_test

import (
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/background"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/window"
	"github.com/bitmark-inc/logger"
)

const (
	alice = account.Handle("alice")
	bob   = account.Handle("bob")
)

func TestGrantThenGet(t *testing.T) {
	clk := clock.NewMock()
	s := window.New(logger.New(category), clk)

	granted, err := s.Grant(alice, 24*time.Hour)
	assert.Nil(t, err, "grant")

	w, ok := s.Get(alice)
	assert.True(t, ok, "window missing")
	assert.Equal(t, granted, w, "wrong window")
	assert.Equal(t, w.GrantedAt.Add(24*time.Hour), w.ExpiresAt, "wrong expiry")
	assert.Equal(t, alice, w.Account, "wrong account")
}

func TestExpiry(t *testing.T) {
	clk := clock.NewMock()
	s := window.New(logger.New(category), clk)

	_, err := s.Grant(alice, time.Hour)
	assert.Nil(t, err, "grant")

	assert.True(t, s.IsValid(alice), "not valid after grant")
	assert.Equal(t, uint64(3600), s.RemainingSeconds(alice), "wrong remaining")

	clk.Add(59*time.Minute + 30*time.Second)
	assert.True(t, s.IsValid(alice), "expired early")
	assert.Equal(t, uint64(30), s.RemainingSeconds(alice), "wrong remaining")

	clk.Add(29*time.Second + 500*time.Millisecond)
	assert.Equal(t, uint64(1), s.RemainingSeconds(alice), "part second must round up")

	clk.Add(500 * time.Millisecond)
	assert.False(t, s.IsValid(alice), "valid at expiry instant")
	assert.Equal(t, uint64(0), s.RemainingSeconds(alice), "remaining after expiry")

	_, ok := s.Get(alice)
	assert.False(t, ok, "expired window returned")
	assert.Equal(t, 0, s.Count(), "expired window kept")
}

func TestGrantReplaces(t *testing.T) {
	clk := clock.NewMock()
	s := window.New(logger.New(category), clk)

	_, _ = s.Grant(alice, time.Hour)
	clk.Add(30 * time.Minute)
	_, _ = s.Grant(alice, 10*time.Minute)

	assert.Equal(t, uint64(600), s.RemainingSeconds(alice), "grant should not accumulate")
	assert.Equal(t, 1, s.Count(), "one window per account")
}

func TestGrantInvalidDuration(t *testing.T) {
	s := window.New(logger.New(category), clock.NewMock())

	_, err := s.Grant(alice, 0)
	assert.Equal(t, fault.InvalidDuration, err, "zero duration")

	_, err = s.Grant(alice, -time.Second)
	assert.Equal(t, fault.InvalidDuration, err, "negative duration")

	assert.False(t, s.IsValid(alice), "window created")
}

func TestAbsent(t *testing.T) {
	s := window.New(logger.New(category), clock.NewMock())

	assert.False(t, s.IsValid(bob), "absent is valid")
	assert.Equal(t, uint64(0), s.RemainingSeconds(bob), "absent has time")
	assert.False(t, s.Revoke(bob), "revoked absent")
}

func TestRevoke(t *testing.T) {
	s := window.New(logger.New(category), clock.NewMock())

	_, _ = s.Grant(alice, time.Hour)
	assert.True(t, s.Revoke(alice), "revoke")
	assert.False(t, s.IsValid(alice), "valid after revoke")
}

func TestSweep(t *testing.T) {
	clk := clock.NewMock()
	s := window.New(logger.New(category), clk)

	_, _ = s.Grant(alice, time.Minute)
	_, _ = s.Grant(bob, time.Hour)

	clk.Add(2 * time.Minute)

	assert.Equal(t, 1, s.Sweep(), "wrong sweep count")
	assert.Equal(t, 1, s.Count(), "wrong count")
	assert.True(t, s.IsValid(bob), "bob removed")
}

func TestCleaner(t *testing.T) {
	clk := clock.NewMock()
	s := window.New(logger.New(category), clk)

	_, _ = s.Grant(alice, time.Minute)
	_, _ = s.Grant(bob, 24*time.Hour)

	processes := background.Start(background.Processes{s.Cleaner(30 * time.Second)}, nil)
	defer processes.StopAndWait()

	// let the cleaner create its ticker
	assert.Eventually(t, func() bool {
		clk.Add(30 * time.Second)
		return 1 == s.Count()
	}, 5*time.Second, 10*time.Millisecond, "expired window not swept")

	assert.True(t, s.IsValid(bob), "bob removed")
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, uint64(0), window.Seconds(-time.Second), "negative")
	assert.Equal(t, uint64(0), window.Seconds(0), "zero")
	assert.Equal(t, uint64(1), window.Seconds(time.Nanosecond), "round up")
	assert.Equal(t, uint64(1), window.Seconds(time.Second), "exact")
	assert.Equal(t, uint64(86400), window.Seconds(24*time.Hour), "day")
}
