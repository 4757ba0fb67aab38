// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"fmt"

	"github.com/bitmark-inc/accessd/background"
)

// announces itself and waits for shutdown
type cleaner struct {
	name string
}

func (c *cleaner) Run(args interface{}, shutdown <-chan struct{}) {
	ready := args.(chan struct{})
	fmt.Printf("%s: started\n", c.name)
	ready <- struct{}{}

	<-shutdown
	fmt.Printf("%s: stopped\n", c.name)
}

func Example() {
	ready := make(chan struct{})

	p := background.Start(background.Processes{
		&cleaner{name: "window cleaner"},
	}, ready)
	<-ready

	p.StopAndWait()

	// Output:
	// window cleaner: started
	// window cleaner: stopped
}
