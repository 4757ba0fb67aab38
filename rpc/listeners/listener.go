// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"net"
	"strings"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

const (
	minConnectionCount = 1
)

// Listener - a started server that can be shut down
type Listener interface {
	Serve() error
	Close() error
}

// parse listen addresses returning the network type and the address to
// pass to net.Listen for each
func parseListenAddress(addrs []string, log *logger.L) ([]string, []string, error) {
	networks := make([]string, len(addrs))
	listen := make([]string, len(addrs))
	for i, address := range addrs {
		host, port, err := net.SplitHostPort(strings.TrimSpace(address))
		if nil != err {
			log.Errorf("listen: %q  error: %s", address, err)
			return nil, nil, fault.InvalidIpAddress
		}

		switch {
		case "*" == host:
			// on the assumption that this will listen on tcp4 and tcp6
			host = "::"
			networks[i] = "tcp"
		case strings.Contains(host, ":"):
			networks[i] = "tcp6"
		default:
			networks[i] = "tcp4"
		}

		if ip := net.ParseIP(host); nil == ip {
			err := fault.InvalidIpAddress
			log.Errorf("listen: %q  error: %s", address, err)
			return nil, nil, err
		}
		listen[i] = net.JoinHostPort(host, port)
	}

	return networks, listen, nil
}
