// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/accessd/util"
	"github.com/bitmark-inc/logger"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
)

// the ZAP handler is process wide
var authentication struct {
	sync.Once
	err error
}

func startAuthentication() error {
	authentication.Do(func() {
		zmq.AuthSetVerbose(false)
		authentication.err = zmq.AuthStart()
	})
	return authentication.err
}

// NewSignalPair - connected push/pull sockets on a unique inproc
// endpoint, used to wake a polling goroutine for shutdown
func NewSignalPair(endpoint string) (*zmq.Socket, *zmq.Socket, error) {
	push, err := zmq.NewSocket(zmq.PUSH)
	if nil != err {
		return nil, nil, err
	}
	push.SetLinger(0)
	if err := push.Bind(endpoint); nil != err {
		push.Close()
		return nil, nil, err
	}

	pull, err := zmq.NewSocket(zmq.PULL)
	if nil != err {
		push.Close()
		return nil, nil, err
	}
	pull.SetLinger(0)
	if err := pull.Connect(endpoint); nil != err {
		push.Close()
		pull.Close()
		return nil, nil, err
	}

	return push, pull, nil
}

// NewMonitor - a PAIR socket receiving the connection events of
// another socket on a unique inproc endpoint
func NewMonitor(socket *zmq.Socket, endpoint string, events zmq.Event) (*zmq.Socket, error) {
	if err := socket.Monitor(endpoint, events); nil != err {
		return nil, err
	}

	monitor, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, err
	}
	if err := monitor.Connect(endpoint); nil != err {
		monitor.Close()
		return nil, err
	}
	return monitor, nil
}

// NewBind - bind a list of addresses
//
// IPv4 and IPv6 need separate sockets so up to two are returned,
// either may be nil.  A nil key pair leaves the traffic unencrypted.
func NewBind(log *logger.L, socketType zmq.Type, zapDomain string, keys *KeyPair, listen []*util.Connection) (*zmq.Socket, *zmq.Socket, error) {

	if nil != keys {
		if err := startAuthentication(); nil != err {
			return nil, nil, err
		}
	}

	sockets := [2]*zmq.Socket{} // IPv4, IPv6
	closeAll := func() {
		for _, s := range sockets {
			if nil != s {
				s.Close()
			}
		}
	}

	for i, address := range listen {
		bindTo, v6 := address.CanonicalIPandPort("tcp://")
		family := 0
		if v6 {
			family = 1
		}

		if nil == sockets[family] {
			s, err := newServerSocket(socketType, zapDomain, keys, v6)
			if nil != err {
				closeAll()
				return nil, nil, err
			}
			sockets[family] = s
		}

		if err := sockets[family].Bind(bindTo); nil != err {
			log.Errorf("cannot bind[%d]: %q  error: %s", i, bindTo, err)
			closeAll()
			return nil, nil, err
		}
		log.Infof("bind[%d]: %q  IPv6: %t", i, bindTo, v6)
	}

	return sockets[0], sockets[1], nil
}

func newServerSocket(socketType zmq.Type, zapDomain string, keys *KeyPair, v6 bool) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	if nil != keys {
		// any client holding the server public key may connect
		zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

		socket.SetCurveServer(1)
		socket.SetCurveSecretkey(string(keys.Private))
		socket.SetZapDomain(zapDomain)
		socket.SetIdentity(string(keys.Public))
	}

	socket.SetIpv6(v6)
	socket.SetLinger(0)
	setHeartbeat(socket)

	return socket, nil
}

// NewSubscriber - a SUB socket connected to every publisher
//
// a nil serverPublicKey leaves the traffic unencrypted, otherwise keys
// must hold this client's pair
func NewSubscriber(log *logger.L, keys *KeyPair, serverPublicKey []byte, connections []*util.Connection, topic string) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		return nil, err
	}

	if nil != serverPublicKey && nil != keys {
		socket.SetCurveServer(0)
		socket.SetCurvePublickey(string(keys.Public))
		socket.SetCurveSecretkey(string(keys.Private))
		socket.SetCurveServerkey(string(serverPublicKey))
	}
	socket.SetLinger(0)
	setHeartbeat(socket)

	// one socket serves both families once IPv6 is enabled
	v6 := false
	for _, c := range connections {
		if _, isV6 := c.CanonicalIPandPort(""); isV6 {
			v6 = true
		}
	}
	if err := socket.SetIpv6(v6); nil != err {
		socket.Close()
		return nil, err
	}

	for _, c := range connections {
		address, _ := c.CanonicalIPandPort("tcp://")
		if err := socket.Connect(address); nil != err {
			log.Errorf("connect to: %q  error: %s", address, err)
			socket.Close()
			return nil, err
		}
		log.Infof("subscribe to: %q  IPv6: %t", address, v6)
	}

	if err := socket.SetSubscribe(topic); nil != err {
		socket.Close()
		return nil, err
	}
	return socket, nil
}

func setHeartbeat(socket *zmq.Socket) {
	socket.SetHeartbeatIvl(heartbeatInterval)
	socket.SetHeartbeatTimeout(heartbeatTimeout)
	socket.SetHeartbeatTtl(heartbeatTTL)
}
