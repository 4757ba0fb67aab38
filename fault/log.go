// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"
)

const panicChannel = "PANIC"

// the channel used for last messages before a panic
var log *logger.L

// Initialise - open the panic log channel, the logger must be running
func Initialise() error {
	if nil != log {
		return AlreadyInitialised
	}
	log = logger.New(panicChannel)
	return nil
}

// Finalise - flush the panic log channel
func Finalise() {
	if nil != log {
		log.Flush()
	}
}

// Panicf - log the caller's position and message then panic
func Panicf(format string, arguments ...interface{}) {
	message := fmt.Sprintf(format, arguments...)
	if _, file, line, ok := runtime.Caller(1); ok {
		message = fmt.Sprintf("(%q:%d) %s", file, line, message)
	}
	critical(message)
	panic("abort, see last messages in log file")
}

// PanicIfError - panic when an operation that cannot fail has failed
func PanicIfError(operation string, err error) {
	if nil == err {
		return
	}
	message := fmt.Sprintf("%s failed with error: %s", operation, err)
	critical(message)
	time.Sleep(100 * time.Millisecond) // let the log writer drain
	panic(message)
}

// falls back to stdout before Initialise
func critical(message string) {
	if nil == log {
		fmt.Printf("*** %s\n", message)
		return
	}
	log.Critical(message)
	log.Flush()
}
