// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type ResolutionError GenericError
type TimeoutError GenericError
type TransportError GenericError

// common errors - keep in alphabetic order
var (
	AccountNotFound              = ResolutionError("account not found")
	AlreadyInitialised           = ExistsError("already initialised")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	DuplicateSettlementEvent     = ExistsError("duplicate settlement event")
	InvalidAccountHandle         = InvalidError("invalid account handle")
	InvalidAddress               = InvalidError("invalid address")
	InvalidAmount                = InvalidError("invalid amount")
	InvalidConfiguration         = InvalidError("invalid configuration")
	InvalidCount                 = InvalidError("invalid count")
	InvalidDnsTxtRecord          = InvalidError("invalid DNS TXT record")
	InvalidDuration              = InvalidError("invalid duration")
	InvalidIpAddress             = InvalidError("invalid IP address")
	InvalidPortNumber            = InvalidError("invalid port number")
	InvalidPrivateKey            = InvalidError("invalid private key")
	InvalidPublicKey             = InvalidError("invalid public key")
	InvalidSettlementEvent       = InvalidError("invalid settlement event")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	MissingParameters            = InvalidError("missing parameters")
	NotInitialised               = NotFoundError("not initialised")
	PaymentTimeout               = TimeoutError("payment timeout")
	RateLimiting                 = ProcessError("rate limiting")
	ResolutionFailed             = ResolutionError("account resolution failed")
	SendFailed                   = TransportError("payment request send failed")
	TransportClosed              = TransportError("transport closed")
	WrongRecipient               = InvalidError("settlement for another recipient")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string     { return string(e) }
func (e InvalidError) Error() string    { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e ProcessError) Error() string    { return string(e) }
func (e ResolutionError) Error() string { return string(e) }
func (e TimeoutError) Error() string    { return string(e) }
func (e TransportError) Error() string  { return string(e) }

// determine the class of an error
// wrapped errors are searched as well
func IsErrExists(e error) bool     { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool    { var t InvalidError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool   { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool    { var t ProcessError; return errors.As(e, &t) }
func IsErrResolution(e error) bool { var t ResolutionError; return errors.As(e, &t) }
func IsErrTimeout(e error) bool    { var t TimeoutError; return errors.As(e, &t) }
func IsErrTransport(e error) bool  { var t TransportError; return errors.As(e, &t) }

// a fault attached to the error that caused it
type wrapped struct {
	class error
	cause error
}

// Wrap - attach an underlying error to one of the error instances above
//
// the result matches both the class (errors.Is and IsErrX) and the
// cause (errors.Is and errors.As)
func Wrap(class error, cause error) error {
	if nil == cause {
		return class
	}
	return &wrapped{
		class: class,
		cause: cause,
	}
}

func (w *wrapped) Error() string {
	return w.class.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.class, w.cause}
}
