// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/configuration"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/accessd/identity"
	"github.com/bitmark-inc/accessd/payment"
	"github.com/bitmark-inc/accessd/publish"
	"github.com/bitmark-inc/accessd/rpc/listeners"
	"github.com/bitmark-inc/accessd/settlement"
	"github.com/bitmark-inc/accessd/tools"
	"github.com/bitmark-inc/accessd/util"
	"github.com/bitmark-inc/accessd/window"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultLogDirectory = "log"
	defaultLogFile      = "accessd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// PaymentType - pricing and timing, durations in seconds
type PaymentType struct {
	Amount    uint64            `gluamapper:"amount" json:"amount"`
	Asset     string            `gluamapper:"asset" json:"asset"`
	Timeout   uint64            `gluamapper:"timeout" json:"timeout"`
	Duration  uint64            `gluamapper:"duration" json:"duration"`
	Resources map[string]uint64 `gluamapper:"resources" json:"resources"`
}

// IdentityType - where account handles are resolved
type IdentityType struct {
	Freshness  uint64 `gluamapper:"freshness" json:"freshness"`
	Domain     string `gluamapper:"domain" json:"domain"`
	StaticFile string `gluamapper:"static_file" json:"static_file"`
}

// WindowType - access window store
type WindowType struct {
	SweepInterval uint64 `gluamapper:"sweep_interval" json:"sweep_interval"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`
	Address       string `gluamapper:"address" json:"address"`

	Payment    PaymentType                  `gluamapper:"payment" json:"payment"`
	Identity   IdentityType                 `gluamapper:"identity" json:"identity"`
	Window     WindowType                   `gluamapper:"window" json:"window"`
	Settlement settlement.Configuration     `gluamapper:"settlement" json:"settlement"`
	Publish    publish.Configuration        `gluamapper:"publish" json:"publish"`
	ClientRPC  listeners.RPCConfiguration   `gluamapper:"client_rpc" json:"client_rpc"`
	HttpsRPC   listeners.HTTPSConfiguration `gluamapper:"https_rpc" json:"https_rpc"`
	Tools      tools.Configuration          `gluamapper:"tools" json:"tools"`
	Logging    logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Payment: PaymentType{
			Timeout:  uint64(payment.DefaultTimeout / time.Second),
			Duration: uint64(access.DefaultDuration / time.Second),
		},

		Identity: IdentityType{
			Freshness: uint64(identity.DefaultFreshness / time.Second),
		},

		Window: WindowType{
			SweepInterval: uint64(window.DefaultSweepInterval / time.Second),
		},

		Settlement: settlement.Configuration{
			RecentEvents: settlement.DefaultRecentEvents,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		// default: share config with normal RPC
		HttpsRPC: listeners.HTTPSConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if err := options.verify(); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.HttpsRPC.Certificate,
		&options.HttpsRPC.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.DataPath(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Identity.StaticFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.DataPath(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("Files: %q is not plain name", options.Logging.File)
	}

	// create directories if they do not already exist
	if err := os.MkdirAll(options.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	// done
	return options, nil
}

// the checks that do not need the file system
func (c *Configuration) verify() error {
	c.Address = strings.TrimSpace(c.Address)
	if "" == c.Address {
		return fmt.Errorf("%w: address is required", fault.InvalidConfiguration)
	}
	if err := c.pricing().Validate(); nil != err {
		return fmt.Errorf("%w: payment: %s", fault.InvalidConfiguration, err)
	}
	if 0 == len(c.Settlement.Subscribe) {
		return fmt.Errorf("%w: settlement.subscribe is required", fault.InvalidConfiguration)
	}
	if "" == c.Identity.Domain && "" == c.Identity.StaticFile {
		return fmt.Errorf("%w: identity needs a domain or a static_file", fault.InvalidConfiguration)
	}
	return nil
}

func (c *Configuration) pricing() access.Pricing {
	return access.Pricing{
		Amount:    c.Payment.Amount,
		Asset:     c.Payment.Asset,
		Resources: c.Payment.Resources,
	}
}

// orchestrator options from the payment section
func (c *Configuration) accessOptions() access.Options {
	return access.Options{
		Pricing:  c.pricing(),
		Duration: seconds(c.Payment.Duration),
		Timeout:  seconds(c.Payment.Timeout),
	}
}

func seconds(n uint64) time.Duration {
	return time.Duration(n) * time.Second
}
