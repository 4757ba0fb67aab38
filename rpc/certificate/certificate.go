// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/util"
)

// Get - verify that a set of listener parameters are valid
// and return the certificate
func Get(log *logger.L, name, certificate, key string) (*tls.Config, util.FingerprintBytes, error) {
	var fin util.FingerprintBytes

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if err != nil {
		log.Errorf("%s failed to load keypair: %v", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	// FreeBSD: openssl x509 -outform DER -in accessd-local-rpc.crt | sha3sum -a 256
	fin = util.Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Load - read certificate and key files then Get
func Load(log *logger.L, name, certificateFileName, keyFileName string) (*tls.Config, util.FingerprintBytes, error) {
	certificate, err := os.ReadFile(certificateFileName)
	if nil != err {
		log.Errorf("%s certificate: %q  error: %s", name, certificateFileName, err)
		return nil, util.FingerprintBytes{}, err
	}
	key, err := os.ReadFile(keyFileName)
	if nil != err {
		log.Errorf("%s private key: %q  error: %s", name, keyFileName, err)
		return nil, util.FingerprintBytes{}, err
	}
	return Get(log, name, string(certificate), string(key))
}

// MakeSelfSigned - create a self-signed certificate
func MakeSelfSigned(name string, certificateFileName string, privateKeyFileName string, override bool, extraHosts []string) error {

	if util.PathExists(certificateFileName) {
		return fault.CertificateFileAlreadyExists
	}

	if util.PathExists(privateKeyFileName) {
		return fault.KeyFileAlreadyExists
	}

	cert, key, err := Generate(name, override, extraHosts)
	if err != nil {
		return err
	}

	if err = os.WriteFile(certificateFileName, cert, 0666); err != nil {
		return err
	}

	if err = os.WriteFile(privateKeyFileName, key, 0600); err != nil {
		_ = os.Remove(certificateFileName)
		return err
	}

	return nil
}

// Generate - PEM certificate and key valid for ten years
func Generate(name string, override bool, extraHosts []string) ([]byte, []byte, error) {
	org := "accessd self signed cert for: " + name
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	return certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
}
