// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
)

type transferRequest struct {
	Mint    adr.Address  `json:"mint"`
	From    adr.Address  `json:"from"`
	To      adr.Address  `json:"to"`
	Spender *adr.Address `json:"spender"`
	Amount  uint64       `json:"amount"`
}

type approveRequest struct {
	Mint    adr.Address `json:"mint"`
	Owner   adr.Address `json:"owner"`
	Spender adr.Address `json:"spender"`
	Amount  uint64      `json:"amount"`
}

type accountResponse struct {
	Mint    adr.Address `json:"mint"`
	Holder  adr.Address `json:"holder"`
	Balance uint64      `json:"balance"`
}

func (a *API) handleTransfer(w http.ResponseWriter, r *http.Request) error {
	var req transferRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	var err error
	if req.Spender != nil {
		err = a.tokens.TransferFrom(req.Mint, req.From, req.To, *req.Spender, req.Amount)
	} else {
		err = a.tokens.Transfer(req.Mint, req.From, req.To, req.Amount)
	}
	if err != nil {
		return err
	}
	balance, err := a.tokens.Balance(req.Mint, req.To)
	if err != nil {
		return err
	}
	return WriteJSON(w, &accountResponse{Mint: req.Mint, Holder: req.To, Balance: balance})
}

func (a *API) handleApprove(w http.ResponseWriter, r *http.Request) error {
	var req approveRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.tokens.Approve(req.Mint, req.Owner, req.Spender, req.Amount); err != nil {
		return err
	}
	allowance, err := a.tokens.Allowance(req.Mint, req.Owner, req.Spender)
	if err != nil {
		return err
	}
	return WriteJSON(w, map[string]uint64{"allowance": allowance})
}

func (a *API) handleAccount(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	mint, err := adr.ParseAddress(vars["mint"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "invalid mint"))
	}
	holder, err := adr.ParseAddress(vars["address"])
	if err != nil {
		return BadRequest(errors.WithMessage(err, "invalid address"))
	}
	balance, err := a.tokens.Balance(*mint, *holder)
	if err != nil {
		return err
	}
	return WriteJSON(w, &accountResponse{Mint: *mint, Holder: *holder, Balance: balance})
}
