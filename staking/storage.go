// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/storage"
	"github.com/vechain/mmrledger/thor"
)

// Address is the account holding staking storage.
var Address = thor.BytesToAddress([]byte("staking"))

var (
	slotBonded         = nameToSlot("bonded")
	slotLedger         = nameToSlot("ledger")
	slotPayee          = nameToSlot("payee")
	slotVirtualStakers = nameToSlot("virtual-stakers")
	// currency
	slotBalances    = nameToSlot("balances")
	slotLocks       = nameToSlot("stake-locks")
	slotTotalLocked = nameToSlot("total-locked")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// ledgerStorage holds the stash/controller maps.
type ledgerStorage struct {
	context        *storage.Context
	bonded         *storage.Mapping[thor.Address, thor.Address]   // stash -> controller
	ledgers        *storage.Mapping[thor.Address, *StakingLedger] // controller -> ledger
	payees         *storage.Mapping[thor.Address, *RewardDestination]
	virtualStakers *storage.Mapping[thor.Address, bool]
}

func newLedgerStorage(context *storage.Context) *ledgerStorage {
	return &ledgerStorage{
		context:        context,
		bonded:         storage.NewMapping[thor.Address, thor.Address](context, slotBonded),
		ledgers:        storage.NewMapping[thor.Address, *StakingLedger](context, slotLedger),
		payees:         storage.NewMapping[thor.Address, *RewardDestination](context, slotPayee),
		virtualStakers: storage.NewMapping[thor.Address, bool](context, slotVirtualStakers),
	}
}

func (s *ledgerStorage) getBonded(stash thor.Address) (*thor.Address, error) {
	has, err := s.bonded.Has(stash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bonded")
	}
	if !has {
		return nil, nil
	}
	controller, err := s.bonded.Get(stash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bonded")
	}
	return &controller, nil
}

func (s *ledgerStorage) setBonded(stash, controller thor.Address) error {
	return errors.Wrap(s.bonded.Set(stash, controller), "failed to set bonded")
}

func (s *ledgerStorage) getLedger(controller thor.Address) (*StakingLedger, error) {
	has, err := s.ledgers.Has(controller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ledger")
	}
	if !has {
		return nil, nil
	}
	l, err := s.ledgers.Get(controller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ledger")
	}
	return l, nil
}

func (s *ledgerStorage) setLedger(controller thor.Address, l *StakingLedger) error {
	return errors.Wrap(s.ledgers.Set(controller, l), "failed to set ledger")
}

func (s *ledgerStorage) getPayee(stash thor.Address) (*RewardDestination, error) {
	has, err := s.payees.Has(stash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get payee")
	}
	if !has {
		return nil, nil
	}
	p, err := s.payees.Get(stash)
	return p, errors.Wrap(err, "failed to get payee")
}

func (s *ledgerStorage) setPayee(stash thor.Address, payee RewardDestination) error {
	return errors.Wrap(s.payees.Set(stash, &payee), "failed to set payee")
}

func (s *ledgerStorage) isVirtual(stash thor.Address) (bool, error) {
	v, err := s.virtualStakers.Get(stash)
	return v, errors.Wrap(err, "failed to get virtual staker")
}

func (s *ledgerStorage) setVirtual(stash thor.Address, virtual bool) error {
	if !virtual {
		s.virtualStakers.Delete(stash)
		return nil
	}
	return errors.Wrap(s.virtualStakers.Set(stash, true), "failed to set virtual staker")
}

// Balances is the Currency kept in staking storage: a free balance and a stake lock
// per account.
type Balances struct {
	balances    *storage.Mapping[thor.Address, *big.Int]
	locks       *storage.Mapping[thor.Address, *big.Int]
	totalLocked *storage.Scalar[*big.Int]
}

// NewBalances creates the currency over st.
func NewBalances(st *state.State) *Balances {
	return newBalances(storage.NewContext(Address, st))
}

func newBalances(context *storage.Context) *Balances {
	return &Balances{
		balances:    storage.NewMapping[thor.Address, *big.Int](context, slotBalances),
		locks:       storage.NewMapping[thor.Address, *big.Int](context, slotLocks),
		totalLocked: storage.NewScalar[*big.Int](context, slotTotalLocked),
	}
}
