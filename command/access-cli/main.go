// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const connectEnvironment = "ACCESSD_CONNECT"

func main() {

	app := cli.NewApp()
	app.Name = "access-cli"
	app.Usage = "query and drive an accessd"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "",
			Usage:  "*accessd host/IP and port, `HOST:PORT`",
			EnvVar: connectEnvironment,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "check",
			Usage:     "show the access window of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account handle `NAME`",
				},
			},
			Action: runCheck,
		},
		{
			Name:      "request",
			Usage:     "request a payment from an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account handle `NAME`",
				},
				cli.StringFlag{
					Name:  "resource, r",
					Value: "",
					Usage: " priced resource `NAME`",
				},
			},
			Action: runRequest,
		},
		{
			Name:      "confirm",
			Usage:     "wait for a payment and grant access",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account handle `NAME`",
				},
				cli.StringFlag{
					Name:  "resource, r",
					Value: "",
					Usage: " priced resource `NAME`",
				},
				cli.Uint64Flag{
					Name:  "duration, d",
					Value: 0,
					Usage: " access window length `SECONDS` [0 = server default]",
				},
				cli.Uint64Flag{
					Name:  "timeout, t",
					Value: 0,
					Usage: " maximum wait for settlement `SECONDS` [0 = server default]",
				},
			},
			Action: runConfirm,
		},
		{
			Name:      "revoke",
			Usage:     "withdraw the access window of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account handle `NAME`",
				},
			},
			Action: runRevoke,
		},
		{
			Name:      "status",
			Usage:     "windows and pending requests of accounts",
			ArgsUsage: "NAME...",
			Action:    runStatus,
		},
		{
			Name:   "info",
			Usage:  "display accessd status",
			Action: runInfo,
		},
		{
			Name:  "version",
			Usage: "display access-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		command := c.Args().Get(0)
		if "version" == command || "help" == command || "" == command {
			return nil
		}

		connect := c.GlobalString("connect")
		if "" == connect {
			return fmt.Errorf("connect is required: use --connect or %s", connectEnvironment)
		}

		if verbose {
			fmt.Fprintf(e, "connect: %q\n", connect)
		}

		c.App.Metadata["config"] = &metadata{
			connect: connect,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
