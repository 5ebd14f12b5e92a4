// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/kv"
	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/thor"
)

// Staker serializes ledger operations over a kv store. Each mutation is committed
// with a single bulk write, or not at all.
type Staker struct {
	db     kv.Store
	cache  *state.Cache
	params Params
	lock   sync.RWMutex
}

// NewStaker creates a Staker over db. cache is optional.
func NewStaker(db kv.Store, cache *state.Cache, params Params) *Staker {
	return &Staker{db: db, cache: cache, params: params}
}

func (s *Staker) Params() Params { return s.params }

// View runs fn over the committed state. Changes made by fn are discarded.
func (s *Staker) View(fn func(*Staking) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return fn(New(state.New(s.db, s.cache), s.params))
}

// Mutate runs fn and commits its changes if it succeeds.
func (s *Staker) Mutate(fn func(*Staking) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := state.New(s.db, s.cache)
	if err := fn(New(st, s.params)); err != nil {
		return err
	}

	stage := st.Stage()
	if stage.Len() == 0 {
		return nil
	}
	bulk := s.db.Bulk()
	if err := stage.Commit(bulk); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit staking changes")
	}
	stage.UpdateCache()
	if s.cache != nil {
		s.cache.LogStats()
	}
	logger.Debug("staking changes committed", "count", stage.Len())
	return nil
}

// Ledger returns the ledger of the account and the payee of its stash.
func (s *Staker) Ledger(account StakingAccount) (ledger *StakingLedger, payee *RewardDestination, err error) {
	err = s.View(func(stk *Staking) error {
		if ledger, err = stk.Get(account); err != nil {
			return err
		}
		payee, err = stk.RewardDestination(Stash(ledger.Stash))
		return err
	})
	return
}

// Bond bonds value of stash's balance, controlled by controller.
func (s *Staker) Bond(stash, controller thor.Address, value *big.Int, payee RewardDestination) error {
	return s.Mutate(func(stk *Staking) error {
		return stk.Bond(NewLedger(stash, value).WithController(controller), payee)
	})
}

// Deposit funds the account.
func (s *Staker) Deposit(addr thor.Address, amount *big.Int) error {
	return s.Mutate(func(stk *Staking) error {
		b, ok := stk.Currency().(*Balances)
		if !ok {
			return errors.New("currency does not accept deposits")
		}
		return b.Deposit(addr, amount)
	})
}

// FreeBalance returns the balance of addr not locked by stake.
func (s *Staker) FreeBalance(addr thor.Address) (free *big.Int, err error) {
	err = s.View(func(stk *Staking) error {
		free, err = stk.Currency().FreeBalance(addr)
		return err
	})
	return
}
