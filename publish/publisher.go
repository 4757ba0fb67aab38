// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package publish - outbound payment requests on a ZMQ PUB socket
//
// each request is a two frame message [topic, JSON]; a heartbeat
// message is sent periodically so subscribers can detect a dead feed
package publish

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/payment"
	"github.com/bitmark-inc/accessd/util"
	"github.com/bitmark-inc/accessd/zmqutil"
	"github.com/bitmark-inc/logger"
)

const (
	// Topic - first frame of a payment request message
	Topic = "payment-request"

	heartbeatTopic    = "heartbeat"
	heartbeatInterval = 60 * time.Second

	zapDomain = "accessd-publish"
)

// Configuration - a block of configuration data
//
// the keys are optional; without them the feed is not encrypted
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
}

// the JSON form of a payment request on the wire
type wireRequest struct {
	RequestId string `json:"requestId"`
	Account   string `json:"account"`
	Payer     string `json:"payer"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Asset     string `json:"asset,omitempty"`
	Expires   string `json:"expires"`
}

// Publisher - sends payment requests to all subscribers
type Publisher struct {
	sync.Mutex // sockets are not thread safe
	log        *logger.L
	recipient  string
	clock      clock.Clock
	socket4    *zmq.Socket
	socket6    *zmq.Socket
	closed     bool
}

// New - bind the broadcast addresses
//
// recipient is the address payers must pay to
func New(log *logger.L, configuration *Configuration, recipient string, clk clock.Clock) (*Publisher, error) {
	if "" == recipient {
		return nil, fault.InvalidAddress
	}
	if nil == clk {
		clk = clock.New()
	}

	connections, err := util.NewConnections(configuration.Broadcast)
	if nil != err {
		log.Errorf("invalid broadcast: %q  error: %s", configuration.Broadcast, err)
		return nil, err
	}

	keys, err := zmqutil.ReadKeyPair(configuration.PublicKey, configuration.PrivateKey)
	if nil != err {
		log.Errorf("read key pair error: %s", err)
		return nil, err
	}

	socket4, socket6, err := zmqutil.NewBind(log, zmq.PUB, zapDomain, keys, connections)
	if nil != err {
		return nil, err
	}

	p := &Publisher{
		log:       log,
		recipient: recipient,
		clock:     clk,
		socket4:   socket4,
		socket6:   socket6,
	}
	return p, nil
}

// Encode - the wire form of a request
func Encode(request payment.Request, recipient string) ([]byte, error) {
	w := wireRequest{
		RequestId: request.RequestId,
		Account:   request.Account.String(),
		Payer:     request.PayerAddress,
		Recipient: recipient,
		Amount:    strconv.FormatUint(request.Amount, 10),
		Asset:     request.Asset,
		Expires:   request.ExpiresAt.UTC().Format(time.RFC3339),
	}
	return json.Marshal(w)
}

// Send - implement payment.Sender
func (p *Publisher) Send(ctx context.Context, request payment.Request) error {
	if err := ctx.Err(); nil != err {
		return err
	}

	data, err := Encode(request, p.recipient)
	if nil != err {
		return err
	}

	if err := p.send(Topic, data); nil != err {
		return err
	}
	p.log.Debugf("sent: %s", data)
	return nil
}

func (p *Publisher) send(topic string, data []byte) error {
	p.Lock()
	defer p.Unlock()

	if p.closed {
		return fault.TransportClosed
	}

	for _, socket := range []*zmq.Socket{p.socket4, p.socket6} {
		if nil == socket {
			continue
		}
		if _, err := socket.SendMessage(topic, data); nil != err {
			return err
		}
	}
	return nil
}

// Run - heartbeat until shutdown, then close the sockets
func (p *Publisher) Run(args interface{}, shutdown <-chan struct{}) {
	log := p.log
	ticker := p.clock.Ticker(heartbeatInterval)

	log.Info("starting…")
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case t := <-ticker.C:
			err := p.send(heartbeatTopic, []byte(strconv.FormatInt(t.Unix(), 10)))
			if nil != err {
				log.Errorf("heartbeat error: %s", err)
			}
		}
	}
	ticker.Stop()
	p.Close()
	log.Info("stopped")
}

// Close - release the sockets, further sends fail
func (p *Publisher) Close() {
	p.Lock()
	defer p.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if nil != p.socket4 {
		p.socket4.Close()
	}
	if nil != p.socket6 {
		p.socket6.Close()
	}
}
