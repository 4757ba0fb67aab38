// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - resolve account handles to network addresses
//
// a Resolver sits in front of one or more Directory implementations
// and keeps recently resolved addresses for a bounded time.  Only
// positive results are kept; a handle that was not found is asked
// for again on the next call.
package identity
