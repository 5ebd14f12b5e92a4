// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 1024,
		Usage: "megabytes of ram allocated to the database and node caches",
	}
	hasherFlag = cli.StringFlag{
		Name:  "hasher",
		Value: "blake2b",
		Usage: "node hash function (blake2b|keccak256), fixed when the accumulator is created",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiReadOnlyFlag = cli.BoolFlag{
		Name:  "api-read-only",
		Usage: "disable the append endpoint",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration (in milliseconds) greater than the threshold will be logged",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	leafCountFlag = cli.StringFlag{
		Name:  "leaf-count",
		Usage: "use the accumulator as it was with this many leaves",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "write the result to a file instead of stdout",
	}
	rootFlag = cli.StringFlag{
		Name:  "root",
		Usage: "verify against this root instead of the stored one",
	}
	batchFlag = cli.IntFlag{
		Name:  "batch",
		Value: 1000,
		Usage: "leaves appended per commit",
	}
	byFlag = cli.StringFlag{
		Name:  "by",
		Value: "stash",
		Usage: "how the account identifies the ledger (stash|controller)",
	}
	payeeFlag = cli.StringFlag{
		Name:  "payee",
		Value: "staked",
		Usage: "reward destination (staked|stash|controller|account|none)",
	}
	payeeAccountFlag = cli.StringFlag{
		Name:  "payee-account",
		Usage: "account receiving rewards when payee is account",
	}
	eraFlag = cli.Uint64Flag{
		Name:  "era",
		Usage: "current era",
	}
	apiURLFlag = cli.StringFlag{
		Name:  "api-url",
		Value: "http://localhost:8679",
		Usage: "URL of a running API",
	}
)

var dbFlags = []cli.Flag{
	dataDirFlag,
	configFlag,
	cacheFlag,
	hasherFlag,
	verbosityFlag,
	jsonLogsFlag,
}

func withDBFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, dbFlags...), flags...)
}
