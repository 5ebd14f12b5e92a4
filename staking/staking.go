// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking keeps the bonding ledgers of stashes and their controllers
// consistent with each other and with the locked funds.
package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/storage"
	"github.com/vechain/mmrledger/thor"
)

var logger = log.WithContext("pkg", "staking")

// Staking operates the ledgers stored in a state. It's not safe for concurrent use.
//
// Every mutation either fully succeeds, or leaves the state untouched.
type Staking struct {
	state    *state.State
	storage  *ledgerStorage
	currency Currency
	params   Params
}

// New creates a Staking over st, backed by the Balances currency in the same state.
func New(st *state.State, params Params) *Staking {
	context := storage.NewContext(Address, st)
	return &Staking{
		state:    st,
		storage:  newLedgerStorage(context),
		currency: newBalances(context),
		params:   params,
	}
}

// NewWithCurrency creates a Staking over st with an external currency.
func NewWithCurrency(st *state.State, params Params, currency Currency) *Staking {
	s := New(st, params)
	s.currency = currency
	return s
}

// Currency returns the currency backing the stakes.
func (s *Staking) Currency() Currency { return s.currency }

// Params returns the staking constants.
func (s *Staking) Params() Params { return s.params }

func (s *Staking) atomic(fn func() error) error {
	rev := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(rev)
		return err
	}
	return nil
}

// PairedAccount returns the other half of the pair: the controller of a stash, or
// the stash of a controller.
func (s *Staking) PairedAccount(account StakingAccount) (thor.Address, bool, error) {
	if !account.IsController() {
		c, err := s.storage.getBonded(account.Address())
		if err != nil || c == nil {
			return thor.Address{}, false, err
		}
		return *c, true, nil
	}
	l, err := s.storage.getLedger(account.Address())
	if err != nil || l == nil {
		return thor.Address{}, false, err
	}
	return l.Stash, true, nil
}

// IsBonded reports whether the account is a bonded stash or a controller of a ledger.
func (s *Staking) IsBonded(account StakingAccount) (bool, error) {
	if account.IsController() {
		return s.storage.ledgers.Has(account.Address())
	}
	return s.storage.bonded.Has(account.Address())
}

// Get returns the ledger of the account, after checking that the stash and the
// controller point to each other.
func (s *Staking) Get(account StakingAccount) (*StakingLedger, error) {
	var stash, controller thor.Address
	if account.IsController() {
		controller = account.Address()
		l, err := s.storage.getLedger(controller)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, errorf(KindNotController, "%v", account)
		}
		stash = l.Stash
	} else {
		stash = account.Address()
		c, err := s.storage.getBonded(stash)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, errorf(KindNotStash, "%v", account)
		}
		controller = *c
	}

	ledger, err := s.storage.getLedger(controller)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, errorf(KindNotController, "no ledger at controller %v of %v", controller, account)
	}
	bonded, err := s.storage.getBonded(stash)
	if err != nil {
		return nil, err
	}
	if err := CheckPairing(stash, controller, bonded, ledger.Stash); err != nil {
		logger.Error("inconsistent staking ledger", "account", account, "stash", stash, "controller", controller, "err", err)
		return nil, err
	}
	ledger.controller = &controller
	return ledger, nil
}

// controllerOf returns the controller the ledger was fetched with, falling back to
// the bonded mapping.
func (s *Staking) controllerOf(l *StakingLedger) (thor.Address, error) {
	if c, ok := l.Controller(); ok {
		return c, nil
	}
	c, ok, err := s.PairedAccount(Stash(l.Stash))
	if err != nil {
		return thor.Address{}, err
	}
	if !ok {
		return thor.Address{}, errorf(KindNotController, "ledger of %v is not bonded", l.Stash)
	}
	return c, nil
}

// Controller returns the controller of the ledger.
func (s *Staking) Controller(l *StakingLedger) (thor.Address, error) {
	return s.controllerOf(l)
}

// RewardDestination returns the payee of the account's stash.
func (s *Staking) RewardDestination(account StakingAccount) (*RewardDestination, error) {
	stash := account.Address()
	if account.IsController() {
		paired, ok, err := s.PairedAccount(account)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errorf(KindNotController, "%v", account)
		}
		stash = paired
	}
	return s.storage.getPayee(stash)
}

// IsVirtualStaker reports whether the stash is staked without a lock.
func (s *Staking) IsVirtualStaker(stash thor.Address) (bool, error) {
	return s.storage.isVirtual(stash)
}

// SetVirtualStaker flags the stash as virtual: its stake is managed elsewhere and
// never locked here.
func (s *Staking) SetVirtualStaker(stash thor.Address, virtual bool) error {
	return s.atomic(func() error {
		return s.storage.setVirtual(stash, virtual)
	})
}

// TotalDeposit returns the stake locked by all non virtual ledgers.
func (s *Staking) TotalDeposit() (*big.Int, error) {
	if b, ok := s.currency.(*Balances); ok {
		return b.TotalLocked()
	}
	return nil, errors.New("total deposit is not tracked by the currency")
}

// Update writes the ledger and sets the stash's lock to its total.
func (s *Staking) Update(l *StakingLedger) error {
	return s.atomic(func() error { return s.update(l) })
}

func (s *Staking) update(l *StakingLedger) error {
	bonded, err := s.storage.getBonded(l.Stash)
	if err != nil {
		return err
	}
	if bonded == nil {
		return errorf(KindNotStash, "%v is not bonded", l.Stash)
	}
	virtual, err := s.storage.isVirtual(l.Stash)
	if err != nil {
		return err
	}
	if !virtual {
		if err := s.currency.UpdateStake(l.Stash, l.Total); err != nil {
			return err
		}
	}
	controller, err := s.controllerOf(l)
	if err != nil {
		return err
	}
	return s.storage.setLedger(controller, l)
}

// Bond registers a new ledger with its reward destination.
func (s *Staking) Bond(l *StakingLedger, payee RewardDestination) error {
	return s.atomic(func() error {
		bonded, err := s.storage.getBonded(l.Stash)
		if err != nil {
			return err
		}
		if bonded != nil {
			return errorf(KindAlreadyBonded, "%v", l.Stash)
		}
		controller, ok := l.Controller()
		if !ok {
			controller = l.Stash
			l.controller = &controller
		}
		existing, err := s.storage.getLedger(controller)
		if err != nil {
			return err
		}
		if existing != nil {
			return errorf(KindAlreadyPaired, "%v already controls a ledger", controller)
		}
		if l.Active.Cmp(s.params.MinBond) < 0 {
			return errorf(KindInsufficientBond, "bond %v below minimum %v", l.Active, s.params.MinBond)
		}
		if err := s.storage.setPayee(l.Stash, payee); err != nil {
			return err
		}
		if err := s.storage.setBonded(l.Stash, controller); err != nil {
			return err
		}
		return s.update(l)
	})
}

// SetPayee changes the reward destination of a bonded stash.
func (s *Staking) SetPayee(l *StakingLedger, payee RewardDestination) error {
	return s.atomic(func() error {
		bonded, err := s.storage.getBonded(l.Stash)
		if err != nil {
			return err
		}
		if bonded == nil {
			return errorf(KindNotStash, "%v is not bonded", l.Stash)
		}
		return s.storage.setPayee(l.Stash, payee)
	})
}

// SetControllerToStash moves the ledger from its controller to the stash itself.
func (s *Staking) SetControllerToStash(l *StakingLedger) error {
	return s.atomic(func() error {
		controller, ok := l.Controller()
		if !ok {
			return errorf(KindNotController, "ledger of %v was not fetched with its controller", l.Stash)
		}
		if controller == l.Stash {
			return errorf(KindAlreadyPaired, "%v", l.Stash)
		}
		existing, err := s.storage.getLedger(l.Stash)
		if err != nil {
			return err
		}
		if existing != nil && existing.Stash != l.Stash {
			logger.Error("stash controls another ledger", "stash", l.Stash, "other", existing.Stash)
			return errorf(KindBadState, "%v already controls the ledger of %v", l.Stash, existing.Stash)
		}
		s.storage.ledgers.Delete(controller)
		if err := s.storage.setLedger(l.Stash, l); err != nil {
			return err
		}
		if err := s.storage.setBonded(l.Stash, l.Stash); err != nil {
			return err
		}
		l.controller = &l.Stash
		return nil
	})
}

// Kill removes the ledger, bonding and payee of a stash, and releases its lock.
func (s *Staking) Kill(stash thor.Address) error {
	return s.atomic(func() error { return s.kill(stash) })
}

func (s *Staking) kill(stash thor.Address) error {
	controller, err := s.storage.getBonded(stash)
	if err != nil {
		return err
	}
	if controller == nil {
		return errorf(KindNotStash, "%v is not bonded", stash)
	}
	l, err := s.storage.getLedger(*controller)
	if err != nil {
		return err
	}
	if l == nil {
		return errorf(KindNotController, "no ledger at controller %v", *controller)
	}

	s.storage.ledgers.Delete(*controller)
	s.storage.bonded.Delete(stash)
	s.storage.payees.Delete(stash)

	virtual, err := s.storage.isVirtual(l.Stash)
	if err != nil {
		return err
	}
	if virtual {
		s.storage.virtualStakers.Delete(l.Stash)
		return nil
	}
	return s.currency.KillStake(l.Stash)
}
