// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/api/utils"
	"github.com/vechain/mmrledger/staking"
	"github.com/vechain/mmrledger/thor"
)

type Staking struct {
	staker *staking.Staker
}

func New(staker *staking.Staker) *Staking {
	return &Staking{staker}
}

func (s *Staking) handleGetLedger(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	var account staking.StakingAccount
	switch by := req.URL.Query().Get("by"); by {
	case "", "stash":
		account = staking.Stash(addr)
	case "controller":
		account = staking.Controller(addr)
	default:
		return utils.BadRequest(errors.Errorf("by: unknown value %q", by))
	}

	ledger, payee, err := s.staker.Ledger(account)
	if err != nil {
		switch {
		case errors.Is(err, staking.ErrNotStash), errors.Is(err, staking.ErrNotController):
			return utils.NotFound(err)
		case errors.Is(err, staking.ErrBadState):
			return utils.HTTPError(err, http.StatusConflict)
		}
		return err
	}
	return utils.WriteJSON(w, ConvertLedger(ledger, payee))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/ledgers/{account}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetLedger))
}
