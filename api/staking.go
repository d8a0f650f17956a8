// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/staking"
)

type stakeRequest struct {
	Staker adr.Address    `json:"staker"`
	Amount uint64         `json:"amount"`
	Period staking.Period `json:"period"`
}

type unstakeRequest struct {
	Staker adr.Address `json:"staker"`
}

func (a *API) handleStake(w http.ResponseWriter, r *http.Request) error {
	var req stakeRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	summary, err := a.engine.Stake(req.Staker, req.Amount, req.Period)
	if err != nil {
		return err
	}
	return WriteJSON(w, summary)
}

func (a *API) handleUnstake(w http.ResponseWriter, r *http.Request) error {
	var req unstakeRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	summary, err := a.engine.Unstake(req.Staker)
	if err != nil {
		return err
	}
	return WriteJSON(w, summary)
}

func (a *API) handleStakeSummary(w http.ResponseWriter, r *http.Request) error {
	addr, err := adr.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "invalid address"))
	}
	summary, err := a.engine.StakeSummary(*addr)
	if err != nil {
		return err
	}
	return WriteJSON(w, summary)
}

func (a *API) handleConfigSummary(w http.ResponseWriter, _ *http.Request) error {
	summary, err := a.engine.ConfigSummary()
	if err != nil {
		return err
	}
	return WriteJSON(w, summary)
}
