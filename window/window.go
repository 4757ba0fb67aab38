// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package window - per-account access windows
//
// an account holds at most one window; granting again replaces the
// current window rather than extending it.  Expired windows are never
// returned and are removed when next looked at or by the periodic
// sweep.
package window

import (
	"sync"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

// Window - the interval during which an account has access
type Window struct {
	Account   account.Handle `json:"account"`
	GrantedAt time.Time      `json:"grantedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Remaining - time left at a given instant, never negative
func (w Window) Remaining(now time.Time) time.Duration {
	if !now.Before(w.ExpiresAt) {
		return 0
	}
	return w.ExpiresAt.Sub(now)
}

// Store - all current windows
type Store struct {
	sync.RWMutex
	log     *logger.L
	clock   clock.Clock
	windows map[account.Handle]Window
}

// New - create an empty store
func New(log *logger.L, clk clock.Clock) *Store {
	if nil == clk {
		clk = clock.New()
	}
	return &Store{
		log:     log,
		clock:   clk,
		windows: make(map[account.Handle]Window),
	}
}

// Grant - give an account access for duration starting now
func (s *Store) Grant(handle account.Handle, duration time.Duration) (Window, error) {
	if duration <= 0 {
		return Window{}, fault.InvalidDuration
	}

	now := s.clock.Now()
	w := Window{
		Account:   handle,
		GrantedAt: now,
		ExpiresAt: now.Add(duration),
	}

	s.Lock()
	s.windows[handle] = w
	s.Unlock()

	s.log.Infof("grant: %q  until: %s", handle, w.ExpiresAt.Format(time.RFC3339))
	return w, nil
}

// Get - the current window for an account
//
// an expired window is removed and reported as absent
func (s *Store) Get(handle account.Handle) (Window, bool) {
	now := s.clock.Now()

	s.RLock()
	w, ok := s.windows[handle]
	s.RUnlock()

	if !ok {
		return Window{}, false
	}
	if now.Before(w.ExpiresAt) {
		return w, true
	}

	s.Lock()
	// only remove if not replaced in the meantime
	if current, ok := s.windows[handle]; ok && !now.Before(current.ExpiresAt) {
		delete(s.windows, handle)
		s.log.Debugf("expired: %q", handle)
	}
	s.Unlock()

	return Window{}, false
}

// IsValid - true if the account has an unexpired window
func (s *Store) IsValid(handle account.Handle) bool {
	_, ok := s.Get(handle)
	return ok
}

// RemainingSeconds - whole seconds left, rounded up so that zero
// means exactly that no valid window exists
func (s *Store) RemainingSeconds(handle account.Handle) uint64 {
	w, ok := s.Get(handle)
	if !ok {
		return 0
	}
	return Seconds(w.Remaining(s.clock.Now()))
}

// Revoke - remove any window for an account
// returns true if a window was present
func (s *Store) Revoke(handle account.Handle) bool {
	s.Lock()
	_, ok := s.windows[handle]
	delete(s.windows, handle)
	s.Unlock()

	if ok {
		s.log.Infof("revoke: %q", handle)
	}
	return ok
}

// Sweep - remove all expired windows, returns the number removed
func (s *Store) Sweep() int {
	now := s.clock.Now()
	n := 0

	s.Lock()
	for handle, w := range s.windows {
		if !now.Before(w.ExpiresAt) {
			delete(s.windows, handle)
			n += 1
		}
	}
	s.Unlock()

	if n > 0 {
		s.log.Debugf("sweep removed: %d", n)
	}
	return n
}

// Count - number of stored windows, expired ones included until swept
func (s *Store) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.windows)
}

// Seconds - a non-negative duration in whole seconds, rounded up
func Seconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64((d + time.Second - 1) / time.Second)
}
