// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/bitmark-inc/accessd/fault"
)

// Connection - a canonical IP and port pair
type Connection struct {
	ip   net.IP
	port uint16
}

// NewConnection - create a connection from an "IP:port" string
//
// examples:
//   IPv4:  127.0.0.1:1234
//   IPv6:  [::1]:1234
func NewConnection(hostPort string) (*Connection, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(hostPort))
	if nil != err {
		return nil, fault.InvalidIpAddress
	}

	ip := net.ParseIP(strings.Trim(host, " "))
	if nil == ip {
		return nil, fault.InvalidIpAddress
	}

	numericPort, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err {
		return nil, fault.InvalidPortNumber
	}
	if numericPort < 1 || numericPort > 65535 {
		return nil, fault.InvalidPortNumber
	}
	c := &Connection{
		ip:   ip,
		port: uint16(numericPort),
	}
	return c, nil
}

// NewConnections - convert a list of "IP:port" strings
func NewConnections(hostPorts []string) ([]*Connection, error) {
	if 0 == len(hostPorts) {
		return nil, fault.InvalidCount
	}
	c := make([]*Connection, len(hostPorts))
	for i, hostPort := range hostPorts {
		bc, err := NewConnection(hostPort)
		if nil != err {
			return nil, err
		}
		c[i] = bc
	}
	return c, nil
}

// CanonicalIPandPort - string of canonical connection with a prefix
// and a flag to indicate IPv6
func (conn *Connection) CanonicalIPandPort(prefix string) (string, bool) {
	port := strconv.FormatUint(uint64(conn.port), 10)
	if nil != conn.ip.To4() {
		return prefix + conn.ip.String() + ":" + port, false
	}
	return prefix + "[" + conn.ip.String() + "]:" + port, true
}

// String - canonical form without prefix
func (conn Connection) String() string {
	s, _ := conn.CanonicalIPandPort("")
	return s
}
