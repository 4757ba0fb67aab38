// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tools

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

const (
	defaultPath     = "/mcp"
	shutdownTimeout = 10 * time.Second
)

// Configuration - the MCP listener
type Configuration struct {
	Listen []string `gluamapper:"listen" json:"listen"`
	Path   string   `gluamapper:"path" json:"path"`
}

// Server - streamable HTTP front end for the tools
type Server struct {
	log       *logger.L
	listeners []net.Listener
	server    *http.Server
}

// New - bind the configured addresses
//
// returns nil if no listen addresses are configured
func New(log *logger.L, configuration *Configuration, version string, orchestrator Orchestrator) (*Server, error) {
	if 0 == len(configuration.Listen) {
		log.Info("disabled")
		return nil, nil
	}
	if nil == orchestrator {
		return nil, fault.MissingParameters
	}

	path := configuration.Path
	if "" == path {
		path = defaultPath
	}

	mcpServer := NewServer(log, version, orchestrator)
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	s := &Server{
		log: log,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: shutdownTimeout,
		},
	}

	for _, address := range configuration.Listen {
		l, err := net.Listen("tcp", address)
		if nil != err {
			log.Errorf("listen: %q  error: %s", address, err)
			s.close()
			return nil, err
		}
		log.Infof("listening on: %s%s", l.Addr(), path)
		s.listeners = append(s.listeners, l)
	}

	return s, nil
}

// Addresses - the bound listen addresses
func (s *Server) Addresses() []string {
	a := make([]string, len(s.listeners))
	for i, l := range s.listeners {
		a[i] = l.Addr().String()
	}
	return a
}

// Run - serve until shutdown
func (s *Server) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("starting…")

	for _, l := range s.listeners {
		go func(l net.Listener) {
			err := s.server.Serve(l)
			if nil != err && http.ErrServerClosed != err {
				s.log.Errorf("serve: %s  error: %s", l.Addr(), err)
			}
		}(l)
	}

	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); nil != err {
		s.log.Warnf("shutdown error: %s", err)
	}

	s.log.Info("finished")
}

func (s *Server) close() {
	for _, l := range s.listeners {
		_ = l.Close()
	}
}
