// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"fmt"
	"sync/atomic"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/util"
	"github.com/bitmark-inc/accessd/zmqutil"
	"github.com/bitmark-inc/logger"
)

const (
	subscriberStopSignal    = "inproc://settlement-stop-signal"
	subscriberMonitorSignal = "inproc://settlement-monitor-signal"
)

// inproc endpoints must be unique while a subscriber is open
var subscriberSequence uint64

// Configuration - settlement feed connection
//
// the keys are only needed when the publisher uses Curve encryption
type Configuration struct {
	Subscribe       []string `gluamapper:"subscribe" json:"subscribe"`
	RecentEvents    int      `gluamapper:"recent_events" json:"recent_events"`
	ServerPublicKey string   `gluamapper:"server_public_key" json:"server_public_key"`
	PublicKey       string   `gluamapper:"public_key" json:"public_key"`
	PrivateKey      string   `gluamapper:"private_key" json:"private_key"`
}

// Subscriber - background process receiving settlement events
type Subscriber struct {
	received uint64 // atomic counters first for alignment
	rejected uint64
	log      *logger.L
	intake   *Intake
	push     *zmq.Socket
	pull     *zmq.Socket
	sub      *zmq.Socket
	subMon   *zmq.Socket
}

// NewSubscriber - connect to all configured publishers
func NewSubscriber(log *logger.L, configuration *Configuration, intake *Intake) (*Subscriber, error) {

	connections, err := util.NewConnections(configuration.Subscribe)
	if nil != err {
		log.Errorf("invalid subscribe connections: %q expect IP4:port or [IP6]:port  error: %s", configuration.Subscribe, err)
		return nil, err
	}

	keys, serverPublicKey, err := readKeys(configuration)
	if nil != err {
		log.Errorf("read keys error: %s", err)
		return nil, err
	}

	n := atomic.AddUint64(&subscriberSequence, 1)

	push, pull, err := zmqutil.NewSignalPair(fmt.Sprintf("%s-%d", subscriberStopSignal, n))
	if nil != err {
		return nil, err
	}

	sub, err := zmqutil.NewSubscriber(log, keys, serverPublicKey, connections, Topic)
	if nil != err {
		push.Close()
		pull.Close()
		return nil, err
	}

	subMon, err := zmqutil.NewMonitor(sub, fmt.Sprintf("%s-%d", subscriberMonitorSignal, n), zmq.EVENT_CONNECTED|zmq.EVENT_DISCONNECTED)
	if nil != err {
		push.Close()
		pull.Close()
		sub.Close()
		return nil, err
	}

	s := &Subscriber{
		log:    log,
		intake: intake,
		push:   push,
		pull:   pull,
		sub:    sub,
		subMon: subMon,
	}
	return s, nil
}

// the client pair is only needed with a server key
func readKeys(configuration *Configuration) (*zmqutil.KeyPair, []byte, error) {
	if "" == configuration.ServerPublicKey {
		return nil, nil, nil
	}
	serverPublicKey, err := zmqutil.ReadPublicKey(configuration.ServerPublicKey)
	if nil != err {
		return nil, nil, err
	}
	keys, err := zmqutil.ReadKeyPair(configuration.PublicKey, configuration.PrivateKey)
	if nil != err {
		return nil, nil, err
	}
	if nil == keys {
		return nil, nil, fault.InvalidPrivateKey
	}
	return keys, serverPublicKey, nil
}

// Run - receive loop until shutdown
func (s *Subscriber) Run(args interface{}, shutdown <-chan struct{}) {

	log := s.log
	log.Info("starting…")

	done := make(chan struct{})

	go func() {
		poller := zmq.NewPoller()
		poller.Add(s.sub, zmq.POLLIN)
		poller.Add(s.subMon, zmq.POLLIN)
		poller.Add(s.pull, zmq.POLLIN)

	loop:
		for {
			polled, err := poller.Poll(-1)
			if nil != err {
				log.Errorf("poll error: %s", err)
				if zmq.AsErrno(err) == zmq.ETERM {
					break loop
				}
				continue loop
			}

			for _, p := range polled {
				switch socket := p.Socket; socket {
				case s.pull:
					_, _ = socket.RecvMessageBytes(0)
					break loop

				case s.subMon:
					ev, addr, v, err := socket.RecvEvent(0)
					if nil != err {
						log.Errorf("receive event error: %s", err)
						continue loop
					}
					log.Infof("event: %q  address: %q  value: %d", ev, addr, v)

				default:
					msg, err := socket.RecvMessageBytes(0)
					if nil != err {
						log.Errorf("sub receive error: %s", err)
						continue loop
					}
					s.process(msg)
				}
			}
		}

		s.pull.Close()
		s.subMon.Close()
		s.sub.Close()
		close(done)
	}()

	log.Info("started")

	<-shutdown
	_, err := s.push.SendMessage("stop")
	fault.PanicIfError("settlement subscriber stop", err)
	<-done
	s.push.Close()

	log.Info("stopped")
}

func (s *Subscriber) process(msg [][]byte) {
	atomic.AddUint64(&s.received, 1)

	if 2 != len(msg) || Topic != string(msg[0]) {
		atomic.AddUint64(&s.rejected, 1)
		s.log.Errorf("invalid message: %q", msg)
		return
	}

	_, err := s.intake.Accept(msg[1])
	if nil != err && fault.DuplicateSettlementEvent != err && fault.WrongRecipient != err {
		atomic.AddUint64(&s.rejected, 1)
	}
}

// Counts - messages received and rejected so far
func (s *Subscriber) Counts() (uint64, uint64) {
	return atomic.LoadUint64(&s.received), atomic.LoadUint64(&s.rejected)
}
