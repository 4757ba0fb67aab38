// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package limitedset

import (
	"container/ring"
	"sync"
)

// LimitedSet - a set holding at most a fixed number of the most
// recently added items; the oldest item is dropped to make room
type LimitedSet struct {
	sync.Mutex
	size int
	ring *ring.Ring
	hash map[string]*ring.Ring
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	if n < 1 {
		n = 1
	}
	return &LimitedSet{
		size: n,
		ring: ring.New(n),
		hash: make(map[string]*ring.Ring, n),
	}
}

// Add - add an item to the set, an existing item becomes the newest
func (ls *LimitedSet) Add(item string) {
	ls.Lock()
	defer ls.Unlock()
	ls.add(item)
}

// AddIfAbsent - add an item only if it is not present
//
// returns true if the item was added, false if it was already seen
func (ls *LimitedSet) AddIfAbsent(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	if _, ok := ls.hash[item]; ok {
		return false
	}
	ls.add(item)
	return true
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	_, ok := ls.hash[item]
	return ok
}

// Len - number of items currently held
func (ls *LimitedSet) Len() int {
	ls.Lock()
	defer ls.Unlock()
	return len(ls.hash)
}

// must hold lock
func (ls *LimitedSet) add(item string) {
	if r, ok := ls.hash[item]; ok {
		if r == ls.ring {
			// oldest slot: moving the cursor past it makes it the newest
			ls.ring = ls.ring.Next()
			return
		}
		r = r.Prev().Unlink(1)
		ls.ring.Prev().Link(r)
		return
	}
	if oldItem, ok := ls.ring.Value.(string); ok {
		delete(ls.hash, oldItem)
	}
	ls.ring.Value = item
	ls.hash[item] = ls.ring
	ls.ring = ls.ring.Next()
}
