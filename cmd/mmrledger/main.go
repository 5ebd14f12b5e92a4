// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mmrledger/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "mmrledger"
	app.Usage = "Append-only MMR accumulator and staking ledger"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "serve the HTTP API",
			Flags:  withDBFlags(apiAddrFlag, apiCorsFlag, apiReadOnlyFlag, enableAPILogsFlag, apiSlowQueriesThresholdFlag, pprofFlag, enableMetricsFlag, metricsAddrFlag, enableAdminFlag, adminAddrFlag),
			Action: serveAction,
		},
		{
			Name:      "append",
			Usage:     "append leaves, given as hex or @file",
			ArgsUsage: "<hex|@file>...",
			Flags:     dbFlags,
			Action:    appendAction,
		},
		{
			Name:   "root",
			Usage:  "print the root",
			Flags:  withDBFlags(leafCountFlag),
			Action: rootAction,
		},
		{
			Name:      "prove",
			Usage:     "generate a proof of leaves",
			ArgsUsage: "<index>...",
			Flags:     withDBFlags(leafCountFlag, outFlag),
			Action:    proveAction,
		},
		{
			Name:      "verify",
			Usage:     "verify a proof generated by prove",
			ArgsUsage: "<proof.json>",
			Flags:     withDBFlags(rootFlag),
			Action:    verifyAction,
		},
		{
			Name:      "ancestry",
			Usage:     "prove that an earlier accumulator is a prefix of the current one",
			ArgsUsage: "<prev-leaf-count>",
			Flags:     withDBFlags(leafCountFlag, outFlag),
			Action:    ancestryAction,
		},
		{
			Name:      "import",
			Usage:     "append the leaves of a file, one hex leaf per line",
			ArgsUsage: "<file>",
			Flags:     withDBFlags(batchFlag),
			Action:    importAction,
		},
		{
			Name:   "watch",
			Usage:  "print root updates of a running API",
			Flags:  []cli.Flag{apiURLFlag, verbosityFlag, jsonLogsFlag},
			Action: watchAction,
		},
		{
			Name:      "ledger",
			Usage:     "print the ledger of an account",
			ArgsUsage: "<account>",
			Flags:     withDBFlags(byFlag),
			Action:    ledgerAction,
		},
		{
			Name:      "bond",
			Usage:     "bond funds of a stash",
			ArgsUsage: "<stash> <controller> <value>",
			Flags:     withDBFlags(payeeFlag, payeeAccountFlag),
			Action:    bondAction,
		},
		{
			Name:      "unbond",
			Usage:     "schedule active stake to unlock",
			ArgsUsage: "<stash> <value>",
			Flags:     withDBFlags(eraFlag),
			Action:    unbondAction,
		},
		{
			Name:      "withdraw",
			Usage:     "withdraw unlocked stake",
			ArgsUsage: "<stash>",
			Flags:     withDBFlags(eraFlag),
			Action:    withdrawAction,
		},
		{
			Name:      "fund",
			Usage:     "deposit funds to an account",
			ArgsUsage: "<account> <value>",
			Flags:     dbFlags,
			Action:    fundAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
