// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// FingerprintBytes - type for a certificate or event fingerprint
type FingerprintBytes [32]byte

// Fingerprint - SHA3-256 of some bytes
//
// used for TLS certificates (to publish for client pinning) and
// for recognising replayed settlement events
func Fingerprint(data []byte) FingerprintBytes {
	return sha3.Sum256(data)
}

// String - hex form of a fingerprint
func (f FingerprintBytes) String() string {
	return hex.EncodeToString(f[:])
}
