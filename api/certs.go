// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/cert"
)

type mintCertRequest struct {
	Payer  adr.Address `json:"payer"`
	Name   string      `json:"name"`
	Symbol string      `json:"symbol"`
	URI    string      `json:"uri"`
	Amount uint64      `json:"amount"`
}

type collectionResponse struct {
	*cert.Collection
	Count uint64 `json:"count"`
}

func (a *API) handleMintCert(w http.ResponseWriter, r *http.Request) error {
	var req mintCertRequest
	if err := ParseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	crt, err := a.certs.MintWithPayment(req.Payer, req.Name, req.Symbol, req.URI, req.Amount)
	if err != nil {
		return err
	}
	return WriteJSON(w, crt)
}

func (a *API) handleGetCert(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "invalid certificate id"))
	}
	crt, err := a.certs.Get(id)
	if err != nil {
		return err
	}
	return WriteJSON(w, crt)
}

func (a *API) handleCollection(w http.ResponseWriter, _ *http.Request) error {
	col, err := a.certs.Collection()
	if err != nil {
		return err
	}
	count, err := a.certs.Count()
	if err != nil {
		return err
	}
	return WriteJSON(w, &collectionResponse{Collection: col, Count: count})
}
