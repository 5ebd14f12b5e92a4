// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/mmrledger/thor"

// CheckPairing validates a resolved stash/controller pair: the stash must be bonded
// to exactly that controller, and the controller's ledger must belong to that stash.
// bondedController is nil when the stash has no bonded entry.
func CheckPairing(stash, controller thor.Address, bondedController *thor.Address, ledgerStash thor.Address) error {
	if bondedController == nil || *bondedController != controller {
		return errorf(KindBadState, "stash %v is not bonded to controller %v", stash, controller)
	}
	if ledgerStash != stash {
		return errorf(KindBadState, "ledger of controller %v belongs to %v, not %v", controller, ledgerStash, stash)
	}
	return nil
}
