// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/mmrledger/thor"
)

// UnlockChunk is an amount of stake that becomes withdrawable at Era.
type UnlockChunk struct {
	Value *big.Int
	Era   uint32
}

// StakingLedger is the bonding record of a stash.
//
// Total is always Active plus the sum of Unlocking, and Unlocking is sorted by era.
type StakingLedger struct {
	Stash                thor.Address
	Total                *big.Int
	Active               *big.Int
	Unlocking            []UnlockChunk
	LegacyClaimedRewards []uint32

	// resolved from the bonded mapping when the ledger is fetched, never persisted
	controller *thor.Address
}

// NewLedger creates a ledger of stash with stake fully active, controlled by the stash itself.
func NewLedger(stash thor.Address, stake *big.Int) *StakingLedger {
	return &StakingLedger{
		Stash:      stash,
		Total:      new(big.Int).Set(stake),
		Active:     new(big.Int).Set(stake),
		controller: &stash,
	}
}

// WithController sets a controller different from the stash. Controllers other than
// the stash itself are deprecated and only kept for existing pairs.
func (l *StakingLedger) WithController(controller thor.Address) *StakingLedger {
	l.controller = &controller
	return l
}

// Controller returns the controller the ledger was fetched with.
func (l *StakingLedger) Controller() (thor.Address, bool) {
	if l.controller == nil {
		return thor.Address{}, false
	}
	return *l.controller, true
}

func (l *StakingLedger) unlockingSum() *big.Int {
	sum := new(big.Int)
	for _, c := range l.Unlocking {
		sum.Add(sum, c.Value)
	}
	return sum
}

// ConsolidateUnlocked removes the chunks unlocked at currentEra and lowers Total
// accordingly. It returns the withdrawn amount.
func (l *StakingLedger) ConsolidateUnlocked(currentEra uint32) *big.Int {
	withdrawn := new(big.Int)
	kept := l.Unlocking[:0]
	for _, c := range l.Unlocking {
		if c.Era <= currentEra {
			withdrawn.Add(withdrawn, c.Value)
			continue
		}
		kept = append(kept, c)
	}
	l.Unlocking = kept
	l.Total = new(big.Int).Sub(l.Total, withdrawn)
	return withdrawn
}

// rebond moves up to value from the newest chunks back to active. It returns the moved amount.
func (l *StakingLedger) rebond(value *big.Int) *big.Int {
	var (
		moved = new(big.Int)
		rest  = new(big.Int).Set(value)
	)
	for len(l.Unlocking) > 0 && rest.Sign() > 0 {
		last := &l.Unlocking[len(l.Unlocking)-1]
		if last.Value.Cmp(rest) <= 0 {
			moved.Add(moved, last.Value)
			rest.Sub(rest, last.Value)
			l.Unlocking = l.Unlocking[:len(l.Unlocking)-1]
			continue
		}
		last.Value = new(big.Int).Sub(last.Value, rest)
		moved.Add(moved, rest)
		rest.SetUint64(0)
	}
	l.Active = new(big.Int).Add(l.Active, moved)
	return moved
}

// RewardKind tells where rewards of a stash are paid.
type RewardKind uint8

const (
	// RewardStaked pays to the stash and bonds the reward.
	RewardStaked RewardKind = iota
	RewardStash
	// RewardController is deprecated along with controllers.
	RewardController
	RewardAccount
	RewardNone
)

func (k RewardKind) String() string {
	switch k {
	case RewardStaked:
		return "staked"
	case RewardStash:
		return "stash"
	case RewardController:
		return "controller"
	case RewardAccount:
		return "account"
	case RewardNone:
		return "none"
	}
	return "unknown"
}

// ParseRewardKind is the inverse of RewardKind.String.
func ParseRewardKind(s string) (RewardKind, bool) {
	for k := RewardStaked; k <= RewardNone; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// RewardDestination is where rewards of a stash are paid. Account is only
// meaningful for RewardAccount.
type RewardDestination struct {
	Kind    RewardKind
	Account thor.Address
}

// StakingAccount identifies a ledger either by its stash or by its controller.
type StakingAccount struct {
	addr         thor.Address
	isController bool
}

// Stash identifies a ledger by stash.
func Stash(addr thor.Address) StakingAccount {
	return StakingAccount{addr: addr}
}

// Controller identifies a ledger by controller.
func Controller(addr thor.Address) StakingAccount {
	return StakingAccount{addr: addr, isController: true}
}

func (a StakingAccount) Address() thor.Address { return a.addr }

func (a StakingAccount) IsController() bool { return a.isController }

func (a StakingAccount) String() string {
	if a.isController {
		return "controller(" + a.addr.String() + ")"
	}
	return "stash(" + a.addr.String() + ")"
}

// Params are the staking constants.
type Params struct {
	MaxUnlockingChunks uint32
	HistoryDepth       uint32
	BondingDuration    uint32
	MinBond            *big.Int
}

// DefaultParams returns the default staking constants.
func DefaultParams() Params {
	return Params{
		MaxUnlockingChunks: 32,
		HistoryDepth:       84,
		BondingDuration:    28,
		MinBond:            big.NewInt(1),
	}
}
