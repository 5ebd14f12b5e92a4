// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/thor"
)

// Currency holds the funds that back stakes.
type Currency interface {
	// FreeBalance returns the balance not locked by stake.
	FreeBalance(addr thor.Address) (*big.Int, error)
	// UpdateStake sets the stake lock of addr to amount.
	// It fails with ErrNotEnoughFunds if the balance is below amount.
	UpdateStake(addr thor.Address, amount *big.Int) error
	// KillStake releases the stake lock of addr.
	KillStake(addr thor.Address) error
}

var _ Currency = (*Balances)(nil)

// Balance returns the total balance of addr, locked or not.
func (b *Balances) Balance(addr thor.Address) (*big.Int, error) {
	v, err := b.balances.Get(addr)
	return v, errors.Wrap(err, "failed to get balance")
}

// Locked returns the stake lock of addr.
func (b *Balances) Locked(addr thor.Address) (*big.Int, error) {
	v, err := b.locks.Get(addr)
	return v, errors.Wrap(err, "failed to get lock")
}

// TotalLocked returns the sum of all stake locks.
func (b *Balances) TotalLocked() (*big.Int, error) {
	v, err := b.totalLocked.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total locked")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (b *Balances) FreeBalance(addr thor.Address) (*big.Int, error) {
	balance, err := b.Balance(addr)
	if err != nil {
		return nil, err
	}
	locked, err := b.Locked(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(balance, locked), nil
}

// Deposit adds amount to the balance of addr.
func (b *Balances) Deposit(addr thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative deposit")
	}
	balance, err := b.Balance(addr)
	if err != nil {
		return err
	}
	return errors.Wrap(b.balances.Set(addr, new(big.Int).Add(balance, amount)), "failed to set balance")
}

func (b *Balances) UpdateStake(addr thor.Address, amount *big.Int) error {
	balance, err := b.Balance(addr)
	if err != nil {
		return err
	}
	if amount.Cmp(balance) > 0 {
		return errorf(KindNotEnoughFunds, "stake %v exceeds balance %v", amount, balance)
	}
	return b.setLock(addr, amount)
}

func (b *Balances) KillStake(addr thor.Address) error {
	return b.setLock(addr, new(big.Int))
}

func (b *Balances) setLock(addr thor.Address, amount *big.Int) error {
	old, err := b.Locked(addr)
	if err != nil {
		return err
	}
	total, err := b.TotalLocked()
	if err != nil {
		return err
	}
	total = new(big.Int).Add(total, new(big.Int).Sub(amount, old))
	if err := b.totalLocked.Set(total); err != nil {
		return errors.Wrap(err, "failed to set total locked")
	}
	if amount.Sign() == 0 {
		b.locks.Delete(addr)
		return nil
	}
	return errors.Wrap(b.locks.Set(addr, amount), "failed to set lock")
}
