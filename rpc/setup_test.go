// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/rpc"
	"github.com/bitmark-inc/accessd/rpc/accounts"
	"github.com/bitmark-inc/accessd/rpc/fixtures"
	"github.com/bitmark-inc/accessd/rpc/listeners"
	"github.com/bitmark-inc/accessd/rpc/mocks"
	"github.com/bitmark-inc/accessd/rpc/node"
)

func TestInitialiseAndFinalise(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	dir := t.TempDir()
	cer := filepath.Join(dir, "rpc.crt")
	key := filepath.Join(dir, "rpc.key")
	require.Nil(t, os.WriteFile(cer, []byte(fixtures.Certificate()), 0600), "write certificate")
	require.Nil(t, os.WriteFile(key, []byte(fixtures.Key()), 0600), "write key")

	listen := fmt.Sprintf("127.0.0.1:%d", rand.Intn(30000)+30000)
	rpcConfiguration := listeners.RPCConfiguration{
		MaximumConnections: 5,
		Listen:             []string{listen},
		Certificate:        cer,
		PrivateKey:         key,
	}

	o := mocks.NewMockOrchestrator(ctl)
	o.EXPECT().RequestAccess(gomock.Any(), "bob", "feed").Return(access.Result{
		Status:    access.PaymentRequired,
		Account:   "bob",
		RequestId: "r-1",
	}).Times(1)

	err := rpc.Initialise(&rpcConfiguration, &listeners.HTTPSConfiguration{}, "1.0", o, node.Sources{})
	require.Nil(t, err, "Initialise")

	err = rpc.Initialise(&rpcConfiguration, &listeners.HTTPSConfiguration{}, "1.0", o, node.Sources{})
	assert.Equal(t, fault.AlreadyInitialised, err, "second Initialise")

	conn, err := tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	require.Nil(t, err, "dial")
	client := jsonrpc.NewClient(conn)

	var reply access.Result
	err = client.Call("Access.Request", accounts.RequestArguments{Account: "bob", Resource: "feed"}, &reply)
	assert.Nil(t, err, "Access.Request")
	assert.Equal(t, "r-1", reply.RequestId, "wrong request id")
	_ = client.Close()

	err = rpc.Finalise()
	assert.Nil(t, err, "Finalise")

	err = rpc.Finalise()
	assert.Equal(t, fault.NotInitialised, err, "second Finalise")
}

func TestInitialiseMissingCertificate(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	err := rpc.Initialise(&listeners.RPCConfiguration{
		MaximumConnections: 5,
		Listen:             []string{"127.0.0.1:2130"},
		Certificate:        "/nonexistent/rpc.crt",
		PrivateKey:         "/nonexistent/rpc.key",
	}, nil, "1.0", nil, node.Sources{})
	assert.NotNil(t, err, "missing certificate accepted")
}
