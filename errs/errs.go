// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package errs defines the stable, enumerable failure codes surfaced by the
// ledger. Every precondition or authorization failure carries one of these
// codes so callers can branch on the kind without parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// Code enumerates ledger failure kinds.
type Code string

const (
	Unauthorized              Code = "Unauthorized"
	SystemPaused              Code = "SystemPaused"
	StakingNotEnabled         Code = "StakingNotEnabled"
	InvalidStakeAmount        Code = "InvalidStakeAmount"
	StakeAmountTooLarge       Code = "StakeAmountTooLarge"
	InsufficientFunds         Code = "InsufficientFunds"
	StakingPeriodNotCompleted Code = "StakingPeriodNotCompleted"
	RewardsAlreadyClaimed     Code = "RewardsAlreadyClaimed"
	InsufficientRewardReserve Code = "InsufficientRewardReserve"
	InvalidStakingPeriod      Code = "InvalidStakingPeriod"
	MathOverflow              Code = "MathOverflow"
	PaymentTokenNotConfigured Code = "PaymentTokenNotConfigured"
	RewardReserveNotSet       Code = "RewardReserveNotSet"
	InvalidInput              Code = "InvalidInput"
	AlreadyInitialized        Code = "AlreadyInitialized"
	NotInitialized            Code = "NotInitialized"
	NotFound                  Code = "NotFound"
)

// CodedError couples a failure code with a human-readable message.
type CodedError struct {
	code Code
	msg  string
}

// New creates a coded error.
func New(code Code, format string, args ...interface{}) *CodedError {
	return &CodedError{
		code: code,
		msg:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.msg
}

// Code returns the failure code.
func (e *CodedError) Code() Code {
	return e.code
}

// CodeOf extracts the failure code from err, if any.
func CodeOf(err error) (Code, bool) {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.code, true
	}
	return "", false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
