// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package payment - correlate outbound payment requests with inbound
// settlement events
//
// at most one request is outstanding per account.  Callers asking for
// payment while a request is outstanding join it and receive the same
// outcome as the first caller; no second request is sent.  A request
// ends when a settlement event satisfies it, when its timeout
// elapses or when it is superseded.
package payment
