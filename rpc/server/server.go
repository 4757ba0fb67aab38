// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"

	"github.com/bitmark-inc/accessd/rpc/accounts"
	"github.com/bitmark-inc/accessd/rpc/node"
	"github.com/bitmark-inc/logger"
)

// Create - an RPC server with the Access and Node services registered
func Create(log *logger.L, orchestrator accounts.Orchestrator, n *node.Node) *rpc.Server {

	server := rpc.NewServer()

	_ = server.Register(accounts.New(log, orchestrator))
	_ = server.Register(n)

	return server
}
