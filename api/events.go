// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/eventdb"
)

const defaultEventLimit = 100

func parseEventFilter(r *http.Request) (*eventdb.Filter, error) {
	q := r.URL.Query()

	filter := &eventdb.Filter{
		Type:    q.Get("type"),
		Options: &eventdb.Options{Limit: defaultEventLimit},
	}

	if v := q.Get("actor"); v != "" {
		actor, err := adr.ParseAddress(v)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid actor")
		}
		filter.Actor = actor
	}
	if v := q.Get("order"); v != "" {
		switch eventdb.OrderType(v) {
		case eventdb.ASC, eventdb.DESC:
			filter.Order = eventdb.OrderType(v)
		default:
			return nil, errors.New("order must be ASC or DESC")
		}
	}
	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		rng := &eventdb.Range{}
		if from != "" {
			v, err := strconv.ParseUint(from, 10, 64)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid from")
			}
			rng.From = v
		}
		if to != "" {
			v, err := strconv.ParseUint(to, 10, 64)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid to")
			}
			rng.To = v
		}
		filter.Range = rng
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid offset")
		}
		filter.Options.Offset = offset
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid limit")
		}
		filter.Options.Limit = limit
	}
	return filter, nil
}

func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) error {
	filter, err := parseEventFilter(r)
	if err != nil {
		return BadRequest(err)
	}
	events, err := a.events.Filter(filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*eventdb.Stored{}
	}
	return WriteJSON(w, events)
}
