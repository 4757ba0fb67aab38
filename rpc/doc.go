// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - JSON-RPC and HTTPS surfaces for the access operations
//
// the Access service exposes Check, Request, Confirm and Status; the
// Node service reports counters.  Both are served over TLS as line
// oriented JSON-RPC and, when configured, as POST /accessd/rpc
package rpc
