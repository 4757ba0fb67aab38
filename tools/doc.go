// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tools - the access operations as MCP tools
//
// three tools are served over streamable HTTP: check_access,
// request_access and confirm_payment.  Each returns the access result
// as JSON text and as structured content; only malformed arguments are
// reported as tool errors
package tools
