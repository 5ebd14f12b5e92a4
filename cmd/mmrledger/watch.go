// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mmrledger/client"
)

func watchAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)

	url := ctx.String(apiURLFlag.Name)
	sub, err := client.New(url).SubscribeRoot(handleExitSignal())
	if err != nil {
		return err
	}
	logger.Info("watching root updates", "url", url)

	for ev := range sub {
		if ev.Error != nil {
			return ev.Error
		}
		if _, err := fmt.Fprintf(ctx.App.Writer, "%v %d\n", ev.Data.Root, ev.Data.LeafCount); err != nil {
			return err
		}
	}
	return nil
}
