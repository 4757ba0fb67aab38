// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package window

import (
	"time"

	"github.com/bitmark-inc/accessd/background"
)

// DefaultSweepInterval - period of the expired window cleaner
const DefaultSweepInterval = time.Minute

type cleaner struct {
	store    *Store
	interval time.Duration
}

// Cleaner - background process that sweeps a store periodically
func (s *Store) Cleaner(interval time.Duration) background.Process {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &cleaner{
		store:    s,
		interval: interval,
	}
}

func (c *cleaner) Run(args interface{}, shutdown <-chan struct{}) {
	log := c.store.log
	ticker := c.store.clock.Ticker(c.interval)

	log.Info("starting…")
loop:
	for {
		select {
		case <-ticker.C:
			c.store.Sweep()
		case <-shutdown:
			break loop
		}
	}
	ticker.Stop()
	log.Info("stopped")
}
