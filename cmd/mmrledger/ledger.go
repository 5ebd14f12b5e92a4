// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math"
	"math/big"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	apistaking "github.com/vechain/mmrledger/api/staking"
	"github.com/vechain/mmrledger/staking"
	"github.com/vechain/mmrledger/thor"
)

func parseAddressArg(ctx *cli.Context, i int, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(ctx.Args().Get(i))
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "invalid %v", name)
	}
	return addr, nil
}

func parseEraFlag(ctx *cli.Context) (uint32, error) {
	era := ctx.Uint64(eraFlag.Name)
	if era > math.MaxUint32 {
		return 0, errors.Errorf("invalid --%v", eraFlag.Name)
	}
	return uint32(era), nil
}

func parsePayee(ctx *cli.Context) (staking.RewardDestination, error) {
	kind, ok := staking.ParseRewardKind(ctx.String(payeeFlag.Name))
	if !ok {
		return staking.RewardDestination{}, errors.Errorf("invalid --%v %q", payeeFlag.Name, ctx.String(payeeFlag.Name))
	}
	payee := staking.RewardDestination{Kind: kind}
	if kind == staking.RewardAccount {
		account, err := thor.ParseAddress(ctx.String(payeeAccountFlag.Name))
		if err != nil {
			return payee, errors.Wrapf(err, "invalid --%v", payeeAccountFlag.Name)
		}
		payee.Account = account
	}
	return payee, nil
}

func ledgerAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 1 {
		return errors.New("expected an account")
	}
	addr, err := parseAddressArg(ctx, 0, "account")
	if err != nil {
		return err
	}
	var account staking.StakingAccount
	switch by := ctx.String(byFlag.Name); by {
	case "stash":
		account = staking.Stash(addr)
	case "controller":
		account = staking.Controller(addr)
	default:
		return errors.Errorf("invalid --%v %q", byFlag.Name, by)
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	ledger, payee, err := l.staker.Ledger(account)
	if err != nil {
		return err
	}
	return writeOutput(ctx, apistaking.ConvertLedger(ledger, payee))
}

func fundAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 2 {
		return errors.New("expected an account and a value")
	}
	addr, err := parseAddressArg(ctx, 0, "account")
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.staker.Deposit(addr, amount); err != nil {
		return err
	}
	free, err := l.staker.FreeBalance(addr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "free balance of %v: %v\n", addr, free)
	return err
}

func bondAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 3 {
		return errors.New("expected a stash, a controller and a value")
	}
	stash, err := parseAddressArg(ctx, 0, "stash")
	if err != nil {
		return err
	}
	controller, err := parseAddressArg(ctx, 1, "controller")
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(2))
	if err != nil {
		return err
	}
	payee, err := parsePayee(ctx)
	if err != nil {
		return err
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.staker.Bond(stash, controller, value, payee); err != nil {
		return err
	}
	logger.Info("bonded", "stash", stash, "controller", controller, "value", value, "payee", payee.Kind)
	return nil
}

func unbondAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 2 {
		return errors.New("expected a stash and a value")
	}
	stash, err := parseAddressArg(ctx, 0, "stash")
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	era, err := parseEraFlag(ctx)
	if err != nil {
		return err
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	var scheduled *big.Int
	if err := l.staker.Mutate(func(s *staking.Staking) (err error) {
		scheduled, err = s.Unbond(stash, value, era)
		return
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "unbonding %v until era %d\n", scheduled, era+l.staker.Params().BondingDuration)
	return err
}

func withdrawAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 1 {
		return errors.New("expected a stash")
	}
	stash, err := parseAddressArg(ctx, 0, "stash")
	if err != nil {
		return err
	}
	era, err := parseEraFlag(ctx)
	if err != nil {
		return err
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	var (
		withdrawn *big.Int
		killed    bool
	)
	if err := l.staker.Mutate(func(s *staking.Staking) (err error) {
		withdrawn, killed, err = s.WithdrawUnbonded(stash, era)
		return
	}); err != nil {
		return err
	}
	if killed {
		_, err = fmt.Fprintf(ctx.App.Writer, "withdrawn %v, ledger removed\n", withdrawn)
	} else {
		_, err = fmt.Fprintf(ctx.App.Writer, "withdrawn %v\n", withdrawn)
	}
	return err
}
