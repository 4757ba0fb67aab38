// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

// DefaultFreshness - how long a resolved address is trusted
const DefaultFreshness = 5 * time.Minute

type entry struct {
	account    account.Handle
	address    string
	resolvedAt time.Time
}

// Resolver - cached handle to address resolution
type Resolver struct {
	log       *logger.L
	directory Directory
	freshness time.Duration
	clock     clock.Clock
	cache     *cache.Cache
}

// New - create a resolver in front of a directory
func New(log *logger.L, directory Directory, freshness time.Duration, clk clock.Clock) *Resolver {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if nil == clk {
		clk = clock.New()
	}
	return &Resolver{
		log:       log,
		directory: directory,
		freshness: freshness,
		clock:     clk,
		cache:     cache.New(freshness, 2*freshness),
	}
}

// Resolve - return the network address for a handle
//
// errors are fault.AccountNotFound when no directory knows the handle
// or fault.ResolutionFailed wrapping the directory error
func (r *Resolver) Resolve(handle account.Handle) (string, error) {
	key := handle.String()

	if x, ok := r.cache.Get(key); ok {
		e := x.(entry)
		if r.clock.Now().Sub(e.resolvedAt) < r.freshness {
			r.log.Tracef("hit: %q → %q", handle, e.address)
			return e.address, nil
		}
		r.cache.Delete(key)
	}

	address, found, err := r.directory.Lookup(handle)
	if nil != err {
		r.log.Warnf("lookup: %q  error: %s", handle, err)
		return "", fault.Wrap(fault.ResolutionFailed, err)
	}
	if !found || "" == address {
		r.log.Debugf("lookup: %q  not found", handle)
		return "", fault.AccountNotFound
	}

	r.cache.Set(key, entry{
		account:    handle,
		address:    address,
		resolvedAt: r.clock.Now(),
	}, cache.DefaultExpiration)

	r.log.Debugf("resolved: %q → %q", handle, address)
	return address, nil
}

// Forget - drop any cached address for a handle
func (r *Resolver) Forget(handle account.Handle) {
	r.cache.Delete(handle.String())
}

// Count - number of cached entries, some of which may be stale
func (r *Resolver) Count() int {
	return r.cache.ItemCount()
}
