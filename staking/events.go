// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/adranet/adrd/adr"
)

// Event types emitted by the ledger.
const (
	EventConfigUpdate   = "config-update"
	EventEmergencyPause = "emergency-pause"
	EventStakeOpened    = "stake-opened"
	EventStakeAdded     = "stake-added"
	EventStakeUpdated   = "stake-updated"
	EventUnstake        = "unstake"
	EventTokenBurn      = "token-burn"
)

// Event is a notification record. Unused fields are left at zero values;
// which fields are meaningful depends on Type.
type Event struct {
	Type       string      `json:"type"`
	Actor      adr.Address `json:"actor"`
	Field      string      `json:"field,omitempty"`
	OldValue   string      `json:"oldValue,omitempty"`
	NewValue   string      `json:"newValue,omitempty"`
	Amount     uint64      `json:"amount,omitempty"`
	Reward     uint64      `json:"reward,omitempty"`
	Total      uint64      `json:"total,omitempty"`
	Period     Period      `json:"period,omitempty"`
	StartTime  uint64      `json:"startTime,omitempty"`
	UnlockTime uint64      `json:"unlockTime,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Timestamp  uint64      `json:"timestamp"`
}

// Sink receives emitted events. The SQLite event store implements it; tests
// plug in an in-memory sink.
type Sink interface {
	Append(ev *Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev *Event) error

// Append implements Sink.
func (f SinkFunc) Append(ev *Event) error { return f(ev) }
