// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/rpc/handler"
	"github.com/bitmark-inc/logger"
)

const (
	httpsLogName     = "http_rpc"
	readWriteTimeout = 10 * time.Second

	// longest a Confirm call may hold a response open
	confirmWriteTimeout = 20 * time.Minute
)

// HTTPSConfiguration - configuration file data for HTTPS setup
type HTTPSConfiguration struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string              `gluamapper:"private_key" json:"private_key"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

type httpsListener struct {
	sync.Mutex
	log       *logger.L
	ipType    []string
	listen    []string
	tlsConfig *tls.Config
	mux       *http.ServeMux
	servers   []*http.Server
}

// Serve - start an HTTPS server on every listen address
func (h *httpsListener) Serve() error {
	h.Lock()
	defer h.Unlock()

	for i, listen := range h.listen {
		h.log.Infof("starting server: %s on: %q", httpsLogName, listen)

		ln, err := net.Listen(h.ipType[i], listen)
		if err != nil {
			h.log.Errorf("%s listen error: %s", httpsLogName, err)
			return err
		}

		s := &http.Server{
			Handler:        h.mux,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   confirmWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		h.servers = append(h.servers, s)

		go doServeHTTPS(s, ln, h.tlsConfig, h.log)
	}

	return nil
}

// Close - shut down the servers
func (h *httpsListener) Close() error {
	h.Lock()
	defer h.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), readWriteTimeout)
	defer cancel()

	for _, s := range h.servers {
		_ = s.Shutdown(ctx)
	}
	h.servers = nil
	return nil
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

func doServeHTTPS(s *http.Server, ln net.Listener, cfg *tls.Config, log *logger.L) {
	cfg = cfg.Clone()
	cfg.NextProtos = []string{"http/1.1"}

	tlsListener := tls.NewListener(tcpKeepAliveListener{ln.(*net.TCPListener)}, cfg)

	err := s.Serve(tlsListener)
	if nil != err && http.ErrServerClosed != err {
		log.Errorf("%s serve error: %s", httpsLogName, err)
	}
}

// NewHTTPS - create the HTTPS listener, nil if no listen addresses
func NewHTTPS(
	configuration *HTTPSConfiguration,
	log *logger.L,
	tlsConfig *tls.Config,
	hdlr handler.Handler,
) (Listener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpsLogName)
		return nil, nil
	}

	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", httpsLogName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}

	ipType, listen, err := parseListenAddress(configuration.Listen, log)
	if nil != err {
		return nil, err
	}

	h := &httpsListener{
		log:       log,
		ipType:    ipType,
		listen:    listen,
		tlsConfig: tlsConfig,
	}

	// create access control
	local := make(map[string][]*net.IPNet)
	for path, addresses := range configuration.Allow {
		set := make([]*net.IPNet, len(addresses))
		local[path] = set
		for i, ip := range addresses {
			_, cidr, err := net.ParseCIDR(strings.Trim(ip, " "))
			if nil != err {
				return nil, err
			}
			set[i] = cidr
		}
	}

	hdlr.SetAllow(local)

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("/accessd/rpc", hdlr.RPC)
	h.mux.HandleFunc("/accessd/details", hdlr.Details)
	h.mux.HandleFunc("/", hdlr.Root)

	return h, nil
}
