// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment

import (
	"context"
)

// Future - the eventual outcome of a payment request
//
// resolves exactly once: true if settled, false on timeout, send
// failure or supersession
type Future struct {
	requestId string
	done      chan struct{}
	settled   bool
}

func newFuture(requestId string) *Future {
	return &Future{
		requestId: requestId,
		done:      make(chan struct{}),
	}
}

// only called by the one owner of the resolved waiter list
func (f *Future) resolve(settled bool) {
	f.settled = settled
	close(f.done)
}

// RequestId - correlation id of the request this future waits for
func (f *Future) RequestId() string {
	return f.requestId
}

// Done - closed when the outcome is known
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait - block until the outcome is known or the context ends
//
// cancelling the context only abandons this caller's wait
func (f *Future) Wait(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.settled, nil
	default:
	}

	select {
	case <-f.done:
		return f.settled, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
