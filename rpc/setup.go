// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"sync"
	"time"

	"github.com/bitmark-inc/accessd/counter"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/rpc/accounts"
	"github.com/bitmark-inc/accessd/rpc/certificate"
	"github.com/bitmark-inc/accessd/rpc/handler"
	"github.com/bitmark-inc/accessd/rpc/listeners"
	"github.com/bitmark-inc/accessd/rpc/node"
	"github.com/bitmark-inc/accessd/rpc/server"
	"github.com/bitmark-inc/logger"
)

const (
	tlsName = "client_rpc"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	connections counter.Counter
	listeners   []listeners.Listener

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start the RPC and HTTPS listeners
func Initialise(rpcConfiguration *listeners.RPCConfiguration, httpsConfiguration *listeners.HTTPSConfiguration, version string, orchestrator accounts.Orchestrator, sources node.Sources) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to Start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("rpc-server")
	globalData.log = log
	log.Info("starting…")

	n := node.New(log, time.Now(), version, &globalData.connections, sources)
	s := server.Create(log, orchestrator, n)

	tlsConfig, certificateFingerprint, err := certificate.Load(log, tlsName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&globalData.connections,
		s,
		tlsConfig,
		certificateFingerprint,
	)
	if nil != err {
		return err
	}

	all := []listeners.Listener{rpcListener}

	if nil != httpsConfiguration && 0 != len(httpsConfiguration.Listen) {
		httpsConfig, fingerprint, err := certificate.Load(log, "http_rpc", httpsConfiguration.Certificate, httpsConfiguration.PrivateKey)
		if nil != err {
			return err
		}
		log.Infof("http_rpc: SHA3-256 fingerprint: %s", fingerprint)

		details := func() interface{} {
			var reply node.InfoReply
			n.Fill(&reply)
			return reply
		}
		hdlr := handler.New(log, s, details, httpsConfiguration.MaximumConnections)
		httpsListener, err := listeners.NewHTTPS(httpsConfiguration, log, httpsConfig, hdlr)
		if nil != err {
			return err
		}
		all = append(all, httpsListener)
	}

	for i, l := range all {
		if err := l.Serve(); nil != err {
			for _, started := range all[:i+1] {
				_ = started.Close()
			}
			return err
		}
	}
	globalData.listeners = all

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all listeners
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	for _, l := range globalData.listeners {
		_ = l.Close()
	}
	globalData.listeners = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
