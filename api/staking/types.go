// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/mmrledger/staking"
	"github.com/vechain/mmrledger/thor"
)

type UnlockChunk struct {
	Value *math.HexOrDecimal256 `json:"value"`
	Era   uint32                `json:"era"`
}

type Payee struct {
	Kind    string        `json:"kind"`
	Account *thor.Address `json:"account,omitempty"`
}

type Ledger struct {
	Stash                thor.Address          `json:"stash"`
	Controller           thor.Address          `json:"controller"`
	Total                *math.HexOrDecimal256 `json:"total"`
	Active               *math.HexOrDecimal256 `json:"active"`
	Unlocking            []UnlockChunk         `json:"unlocking"`
	LegacyClaimedRewards []uint32              `json:"legacyClaimedRewards"`
	Payee                *Payee                `json:"payee"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func ConvertLedger(l *staking.StakingLedger, payee *staking.RewardDestination) *Ledger {
	controller, _ := l.Controller()
	ledger := &Ledger{
		Stash:                l.Stash,
		Controller:           controller,
		Total:                hexOrDecimal(l.Total),
		Active:               hexOrDecimal(l.Active),
		Unlocking:            make([]UnlockChunk, 0, len(l.Unlocking)),
		LegacyClaimedRewards: l.LegacyClaimedRewards,
	}
	if ledger.LegacyClaimedRewards == nil {
		ledger.LegacyClaimedRewards = []uint32{}
	}
	for _, c := range l.Unlocking {
		ledger.Unlocking = append(ledger.Unlocking, UnlockChunk{hexOrDecimal(c.Value), c.Era})
	}
	if payee != nil {
		ledger.Payee = &Payee{Kind: payee.Kind.String()}
		if payee.Kind == staking.RewardAccount {
			account := payee.Account
			ledger.Payee.Account = &account
		}
	}
	return ledger
}
