// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"cmp"
	"math"
	"math/big"
	"slices"

	"github.com/vechain/mmrledger/thor"
)

// BondExtra adds up to maxAdditional of the stash's free balance to its active stake.
// It returns the amount actually bonded.
func (s *Staking) BondExtra(stash thor.Address, maxAdditional *big.Int) (*big.Int, error) {
	var extra *big.Int
	err := s.atomic(func() error {
		l, err := s.Get(Stash(stash))
		if err != nil {
			return err
		}
		free, err := s.currency.FreeBalance(stash)
		if err != nil {
			return err
		}
		extra = new(big.Int).Set(maxAdditional)
		if extra.Cmp(free) > 0 {
			extra.Set(free)
		}
		if extra.Sign() <= 0 {
			return errorf(KindNotEnoughFunds, "no free balance to bond")
		}
		l.Total = new(big.Int).Add(l.Total, extra)
		l.Active = new(big.Int).Add(l.Active, extra)
		if l.Active.Cmp(s.params.MinBond) < 0 {
			return errorf(KindInsufficientBond, "active %v below minimum %v", l.Active, s.params.MinBond)
		}
		return s.update(l)
	})
	if err != nil {
		return nil, err
	}
	return extra, nil
}

// Unbond schedules up to value of active stake to unlock after the bonding duration.
// An active stake left below the minimum bond is unbonded entirely.
// It returns the amount actually scheduled.
func (s *Staking) Unbond(stash thor.Address, value *big.Int, currentEra uint32) (*big.Int, error) {
	if value.Sign() < 0 {
		return nil, errorf(KindInvalidValue, "negative unbond value %v", value)
	}
	if currentEra > math.MaxUint32-s.params.BondingDuration {
		return nil, errorf(KindInvalidValue, "era %d overflows with bonding duration %d", currentEra, s.params.BondingDuration)
	}
	var scheduled *big.Int
	err := s.atomic(func() error {
		l, err := s.Get(Stash(stash))
		if err != nil {
			return err
		}
		era := currentEra + s.params.BondingDuration
		i, merge := slices.BinarySearchFunc(l.Unlocking, era, func(c UnlockChunk, e uint32) int {
			return cmp.Compare(c.Era, e)
		})
		if !merge && uint32(len(l.Unlocking)) >= s.params.MaxUnlockingChunks {
			return errorf(KindNoMoreChunks, "%d chunks", len(l.Unlocking))
		}

		scheduled = new(big.Int).Set(value)
		if scheduled.Cmp(l.Active) > 0 {
			scheduled.Set(l.Active)
		}
		active := new(big.Int).Sub(l.Active, scheduled)
		if active.Sign() > 0 && active.Cmp(s.params.MinBond) < 0 {
			// dust is not worth a ledger
			scheduled.Add(scheduled, active)
			active.SetUint64(0)
		}
		if scheduled.Sign() == 0 {
			return nil
		}
		l.Active = active
		if merge {
			l.Unlocking[i].Value = new(big.Int).Add(l.Unlocking[i].Value, scheduled)
		} else {
			l.Unlocking = slices.Insert(l.Unlocking, i, UnlockChunk{Value: scheduled, Era: era})
		}
		return s.update(l)
	})
	if err != nil {
		return nil, err
	}
	return scheduled, nil
}

// Rebond moves up to value from the most recent unlocking chunks back to active stake.
// It returns the amount actually rebonded.
func (s *Staking) Rebond(stash thor.Address, value *big.Int) (*big.Int, error) {
	if value.Sign() < 0 {
		return nil, errorf(KindInvalidValue, "negative rebond value %v", value)
	}
	var moved *big.Int
	err := s.atomic(func() error {
		l, err := s.Get(Stash(stash))
		if err != nil {
			return err
		}
		if len(l.Unlocking) == 0 {
			return errorf(KindNoUnlockChunk, "%v", stash)
		}
		moved = l.rebond(value)
		if l.Active.Cmp(s.params.MinBond) < 0 {
			return errorf(KindInsufficientBond, "active %v below minimum %v", l.Active, s.params.MinBond)
		}
		return s.update(l)
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// WithdrawUnbonded releases the chunks unlocked at currentEra. A ledger left with
// nothing bonded is killed. It returns the withdrawn amount and whether the ledger was killed.
func (s *Staking) WithdrawUnbonded(stash thor.Address, currentEra uint32) (*big.Int, bool, error) {
	var (
		withdrawn *big.Int
		killed    bool
	)
	err := s.atomic(func() error {
		l, err := s.Get(Stash(stash))
		if err != nil {
			return err
		}
		withdrawn = l.ConsolidateUnlocked(currentEra)
		if len(l.Unlocking) == 0 && l.Active.Cmp(s.params.MinBond) < 0 {
			killed = true
			return s.kill(stash)
		}
		if withdrawn.Sign() == 0 {
			return nil
		}
		return s.update(l)
	})
	if err != nil {
		return nil, false, err
	}
	return withdrawn, killed, nil
}

// RecordClaimedReward marks rewards of era as claimed, dropping the eras older than
// the history depth.
func (s *Staking) RecordClaimedReward(stash thor.Address, era uint32) error {
	return s.atomic(func() error {
		l, err := s.Get(Stash(stash))
		if err != nil {
			return err
		}
		var kept []uint32
		for _, e := range l.LegacyClaimedRewards {
			if e == era {
				return nil
			}
			if era < s.params.HistoryDepth || e > era-s.params.HistoryDepth {
				kept = append(kept, e)
			}
		}
		l.LegacyClaimedRewards = append(kept, era)
		if n := len(l.LegacyClaimedRewards); uint32(n) > s.params.HistoryDepth {
			l.LegacyClaimedRewards = l.LegacyClaimedRewards[n-int(s.params.HistoryDepth):]
		}
		return s.update(l)
	})
}
