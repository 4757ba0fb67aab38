// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/util"
)

// key files hold one line: a tag followed by 32 hex encoded bytes
const (
	taggedPublic  = "PUBLIC:"
	taggedPrivate = "PRIVATE:"
	keyLength     = 32
)

// KeyPair - Curve keys as raw bytes
type KeyPair struct {
	Public  []byte
	Private []byte
}

// ReadKeyPair - decode a configured key pair
//
// both blank gives a nil pair, meaning no encryption
func ReadKeyPair(publicKey string, privateKey string) (*KeyPair, error) {
	if "" == publicKey && "" == privateKey {
		return nil, nil
	}
	public, err := ReadPublicKey(publicKey)
	if nil != err {
		return nil, err
	}
	private, err := ReadPrivateKey(privateKey)
	if nil != err {
		return nil, err
	}
	return &KeyPair{
		Public:  public,
		Private: private,
	}, nil
}

// MakeKeyPair - create a new Curve key pair in two files
//
// existing files are never overwritten
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if util.PathExists(publicKeyFileName) || util.PathExists(privateKeyFileName) {
		return fault.KeyFileAlreadyExists
	}

	// zmq returns Z85 text, see: http://rfc.zeromq.org/spec:32
	public, private, err := zmq.NewCurveKeypair()
	if nil != err {
		return err
	}

	if err := ioutil.WriteFile(publicKeyFileName, encodeKey(taggedPublic, public), 0666); nil != err {
		return err
	}
	if err := ioutil.WriteFile(privateKeyFileName, encodeKey(taggedPrivate, private), 0600); nil != err {
		_ = os.Remove(publicKeyFileName)
		return err
	}
	return nil
}

func encodeKey(tag string, z85 string) []byte {
	return []byte(tag + hex.EncodeToString([]byte(zmq.Z85decode(z85))) + "\n")
}

// ReadKeyFile - read a tagged key file
func ReadKeyFile(fileName string) ([]byte, bool, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, false, err
	}
	return ParseKey(string(data))
}

// ReadPublicKey - decode a tagged public key
func ReadPublicKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return nil, err
	}
	if private {
		return nil, fault.InvalidPublicKey
	}
	return data, nil
}

// ReadPrivateKey - decode a tagged private key
func ReadPrivateKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return nil, err
	}
	if !private {
		return nil, fault.InvalidPrivateKey
	}
	return data, nil
}

// ParseKey - decode a tagged hex key, flag is true for a private key
func ParseKey(data string) ([]byte, bool, error) {
	s := strings.TrimSpace(data)

	private := strings.HasPrefix(s, taggedPrivate)
	wrongLength := error(fault.InvalidPrivateKey)
	switch {
	case private:
		s = s[len(taggedPrivate):]
	case strings.HasPrefix(s, taggedPublic):
		s = s[len(taggedPublic):]
		wrongLength = fault.InvalidPublicKey
	default:
		return nil, false, fault.InvalidPublicKey
	}

	key, err := hex.DecodeString(s)
	if nil != err {
		return nil, false, err
	}
	if keyLength != len(key) {
		return nil, false, wrongLength
	}
	return key, private, nil
}
