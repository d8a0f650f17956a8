// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
)

type configureRequest struct {
	Caller     adr.Address `json:"caller"`
	Enabled    bool        `json:"enabled"`
	RewardRate uint64      `json:"rewardRate"`
}

type pauseRequest struct {
	Caller adr.Address `json:"caller"`
	Paused bool        `json:"paused"`
	Reason string      `json:"reason"`
}

type adminTransferRequest struct {
	Caller   adr.Address `json:"caller"`
	NewAdmin adr.Address `json:"newAdmin"`
}

type maxStakeRequest struct {
	Caller    adr.Address `json:"caller"`
	MaxAmount uint64      `json:"maxAmount"`
}

type paymentTokenRequest struct {
	Caller adr.Address `json:"caller"`
	Mint   adr.Address `json:"mint"`
}

type rewardReserveRequest struct {
	Caller  adr.Address `json:"caller"`
	Account adr.Address `json:"account"`
}

type reserveDepositRequest struct {
	Caller adr.Address `json:"caller"`
	Amount uint64      `json:"amount"`
}

func (a *API) handleConfigure(w http.ResponseWriter, r *http.Request) error {
	var req configureRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.Configure(req.Caller, req.Enabled, req.RewardRate); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handlePause(w http.ResponseWriter, r *http.Request) error {
	var req pauseRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.SetEmergencyPause(req.Caller, req.Paused, req.Reason); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handleAdminTransfer(w http.ResponseWriter, r *http.Request) error {
	var req adminTransferRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.UpdateAdmin(req.Caller, req.NewAdmin); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handleMaxStake(w http.ResponseWriter, r *http.Request) error {
	var req maxStakeRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.UpdateMaxStake(req.Caller, req.MaxAmount); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handlePaymentToken(w http.ResponseWriter, r *http.Request) error {
	var req paymentTokenRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.SetPaymentToken(req.Caller, req.Mint); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handleRewardReserve(w http.ResponseWriter, r *http.Request) error {
	var req rewardReserveRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.SetRewardReserve(req.Caller, req.Account); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}

func (a *API) handleReserveDeposit(w http.ResponseWriter, r *http.Request) error {
	var req reserveDepositRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.engine.DepositRewardReserve(req.Caller, req.Amount); err != nil {
		return err
	}
	return a.handleConfigSummary(w, r)
}
