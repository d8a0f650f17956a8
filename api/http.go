// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/adranet/adrd/errs"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusOfCode(code errs.Code) int {
	switch code {
	case errs.Unauthorized:
		return http.StatusForbidden
	case errs.NotFound:
		return http.StatusNotFound
	case errs.InvalidInput, errs.InvalidStakeAmount, errs.StakeAmountTooLarge,
		errs.InvalidStakingPeriod, errs.MathOverflow:
		return http.StatusBadRequest
	default:
		// state conflicts: paused, disabled, locked, claimed, short reserve
		return http.StatusConflict
	}
}

// WrapHandlerFunc converts HandlerFunc to http.HandlerFunc.
// Coded ledger errors are rendered as JSON carrying their stable code.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		if code, ok := errs.CodeOf(err); ok {
			w.Header().Set("Content-Type", JSONContentType)
			w.WriteHeader(statusOfCode(code))
			json.NewEncoder(w).Encode(errorBody{Code: string(code), Message: err.Error()})
			return
		}
		if he, ok := err.(*httpError); ok {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}
