// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

// Status - outcome of an access operation
type Status int

// possible status values
const (
	InvalidRequest   Status = iota
	AccessGranted    Status = iota
	PaymentRequired  Status = iota
	AlreadyActive    Status = iota
	PaymentConfirmed Status = iota
	PaymentTimeout   Status = iota
	ResolutionFailed Status = iota
	TransportError   Status = iota
)

// String - convert the status value for printf
func (s Status) String() string {
	switch s {
	case InvalidRequest:
		return "invalid_request"
	case AccessGranted:
		return "access_granted"
	case PaymentRequired:
		return "payment_required"
	case AlreadyActive:
		return "already_active"
	case PaymentConfirmed:
		return "payment_confirmed"
	case PaymentTimeout:
		return "payment_timeout"
	case ResolutionFailed:
		return "resolution_failed"
	case TransportError:
		return "transport_error"
	default:
		return "*unknown*"
	}
}

// HasAccess - true for the outcomes that leave the account with a window
func (s Status) HasAccess() bool {
	return AccessGranted == s || AlreadyActive == s || PaymentConfirmed == s
}

// MarshalText - convert the status value for JSON
func (s Status) MarshalText() ([]byte, error) {
	buffer := []byte(s.String())
	return buffer, nil
}

// UnmarshalText - convert the status value from JSON to enumeration
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "access_granted":
		*s = AccessGranted
	case "payment_required":
		*s = PaymentRequired
	case "already_active":
		*s = AlreadyActive
	case "payment_confirmed":
		*s = PaymentConfirmed
	case "payment_timeout":
		*s = PaymentTimeout
	case "resolution_failed":
		*s = ResolutionFailed
	case "transport_error":
		*s = TransportError
	default:
		*s = InvalidRequest
	}
	return nil
}
