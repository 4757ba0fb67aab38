// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

// Counted - anything holding a number of entries
type Counted interface {
	Count() int
}

// periodic memory and table sizes
type memoryStats struct {
	log     *logger.L
	pending Counted
	windows Counted
}

func (m *memoryStats) Run(args interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(statsDelay)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
		}

		var s runtime.MemStats
		runtime.ReadMemStats(&s)

		a := s.Alloc / mega
		t := s.TotalAlloc / mega
		v := s.Sys / mega
		m.log.Infof("allocated: %d M  cumulative: %d M  OS virtual: %d M  goroutines: %d", a, t, v, runtime.NumGoroutine())
		m.log.Infof("pending requests: %d  windows: %d", m.pending.Count(), m.windows.Count())
	}
}
