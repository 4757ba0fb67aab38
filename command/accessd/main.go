// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andres-erbsen/clock"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/background"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/identity"
	"github.com/bitmark-inc/accessd/payment"
	"github.com/bitmark-inc/accessd/publish"
	"github.com/bitmark-inc/accessd/rpc"
	"github.com/bitmark-inc/accessd/rpc/node"
	"github.com/bitmark-inc/accessd/settlement"
	"github.com/bitmark-inc/accessd/tools"
	"github.com/bitmark-inc/accessd/window"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last resort logging for unrecoverable errors
	fault.Initialise()
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("address: %q", theConfiguration.Address)
	log.Infof("price: %d %s", theConfiguration.Payment.Amount, theConfiguration.Payment.Asset)

	// connection info
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "Settlement", theConfiguration.Settlement)
	log.Debugf("%s = %#v", "Publish", theConfiguration.Publish)
	log.Debugf("%s = %#v", "Tools", theConfiguration.Tools)

	clk := clock.New()
	processes := background.Processes{}

	// identity directories, static entries take precedence
	identityLog := logger.New("identity")
	directories := identity.MultiDirectory{}
	if "" != theConfiguration.Identity.StaticFile {
		static, err := identity.NewStaticDirectory(identityLog, theConfiguration.Identity.StaticFile)
		if nil != err {
			log.Criticalf("static directory error: %s", err)
			exitwithstatus.Message("static directory error: %s", err)
		}
		directories = append(directories, static)
		processes = append(processes, static)
	}
	if "" != theConfiguration.Identity.Domain {
		dns, err := identity.NewDNSDirectory(identityLog, theConfiguration.Identity.Domain, nil)
		if nil != err {
			log.Criticalf("DNS directory error: %s", err)
			exitwithstatus.Message("DNS directory error: %s", err)
		}
		directories = append(directories, dns)
	}
	resolver := identity.New(identityLog, directories, seconds(theConfiguration.Identity.Freshness), clk)

	// access windows
	windows := window.New(logger.New("window"), clk)
	processes = append(processes, windows.Cleaner(seconds(theConfiguration.Window.SweepInterval)))

	// outbound payment requests
	publisher, err := publish.New(logger.New("publish"), &theConfiguration.Publish, theConfiguration.Address, clk)
	if nil != err {
		log.Criticalf("publish initialise error: %s", err)
		exitwithstatus.Message("publish initialise error: %s", err)
	}
	processes = append(processes, publisher)

	correlator := payment.New(logger.New("payment"), publisher, clk)

	// inbound settlement events
	settlementLog := logger.New("settlement")
	intake := settlement.NewIntake(settlementLog, theConfiguration.Address, theConfiguration.Settlement.RecentEvents, correlator, clk)
	subscriber, err := settlement.NewSubscriber(settlementLog, &theConfiguration.Settlement, intake)
	if nil != err {
		log.Criticalf("settlement initialise error: %s", err)
		exitwithstatus.Message("settlement initialise error: %s", err)
	}
	processes = append(processes, subscriber)

	orchestrator, err := access.New(logger.New("access"), resolver, correlator, windows, clk, theConfiguration.accessOptions())
	if nil != err {
		log.Criticalf("access initialise error: %s", err)
		exitwithstatus.Message("access initialise error: %s", err)
	}

	// start up the rpc listeners
	if 0 != len(theConfiguration.ClientRPC.Listen) {
		sources := node.Sources{
			Pending:    correlator,
			Windows:    windows,
			Identities: resolver,
			Settlement: subscriber,
		}
		err = rpc.Initialise(&theConfiguration.ClientRPC, &theConfiguration.HttpsRPC, version, orchestrator, sources)
		if nil != err {
			log.Criticalf("rpc initialise error: %s", err)
			exitwithstatus.Message("rpc initialise error: %s", err)
		}
		defer rpc.Finalise()
	} else {
		log.Warn("client_rpc disabled")
	}

	// MCP tools
	toolServer, err := tools.New(logger.New("tools"), &theConfiguration.Tools, version, orchestrator)
	if nil != err {
		log.Criticalf("tools initialise error: %s", err)
		exitwithstatus.Message("tools initialise error: %s", err)
	}
	if nil != toolServer {
		processes = append(processes, toolServer)
	}

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		processes = append(processes, &memoryStats{
			log:     logger.New("memory"),
			pending: correlator,
			windows: windows,
		})
	}

	running := background.Start(processes, nil)

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")

	// release anyone still waiting before the transports close
	n := correlator.SupersedeAll()
	log.Infof("superseded %d outstanding requests", n)

	running.StopAndWait()
}

